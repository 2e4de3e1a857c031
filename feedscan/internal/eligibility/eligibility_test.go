package eligibility

import "testing"

func TestAllowed(t *testing.T) {
	o := New(nil, "https://x.com", nil)

	cases := []struct {
		name  string
		path  string
		hints Hints
		want  bool
	}{
		{"home", "/home", Hints{}, true},
		{"bookmarks", "/i/bookmarks", Hints{}, true},
		{"mentions", "/notifications/mentions", Hints{}, true},
		{"explore", "/explore", Hints{}, false},
		{"own profile", "/alice", Hints{ProfileHref: "/alice"}, true},
		{"other profile via own link", "/bob", Hints{ProfileHref: "/alice"}, false},
		{"canonical profile", "/bob", Hints{Canonical: "https://x.com/bob"}, true},
		{"canonical other path", "/bob/status/1", Hints{Canonical: "https://x.com/bob"}, false},
		{"canonical foreign host", "/bob", Hints{Canonical: "https://example.com/bob"}, false},
		{"canonical unparsable", "/bob", Hints{Canonical: "https://x.com/%zz"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := o.Allowed(tc.path, tc.hints); got != tc.want {
				t.Errorf("Allowed(%q, %+v): got %v, want %v", tc.path, tc.hints, got, tc.want)
			}
		})
	}
}

func TestAllowed_CustomPaths(t *testing.T) {
	o := New([]string{"/feed"}, "", nil)
	if !o.Allowed("/feed", Hints{}) {
		t.Error("custom path rejected")
	}
	if o.Allowed("/home", Hints{}) {
		t.Error("default path accepted with custom list")
	}
	if o.Allowed("/bob", Hints{Canonical: "https://x.com/bob"}) {
		t.Error("canonical accepted without canonical host")
	}
}
