package email

import "testing"

func TestBuildLink(t *testing.T) {
	cases := []struct {
		name  string
		base  string
		path  string
		token string
		want  string
	}{
		{name: "plain base", base: "http://localhost:3000", path: "verify-email", token: "abc", want: "http://localhost:3000/verify-email/abc"},
		{name: "trailing slash", base: "https://app.example.com/", path: "reset-password", token: "xyz", want: "https://app.example.com/reset-password/xyz"},
		{name: "empty base", base: "", path: "verify-email", token: "abc", want: "/verify-email/abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildLink(tc.base, tc.path, tc.token); got != tc.want {
				t.Fatalf("buildLink(%q, %q, %q) = %q, want %q", tc.base, tc.path, tc.token, got, tc.want)
			}
		})
	}
}
