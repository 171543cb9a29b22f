package inspection

import "testing"

func TestCleanCityName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CHI  CAGO!!", "CHI CAGO"},
		{"Chicago", "CHICAGO"},
		{"  cHicago, IL.  ", "CHICAGO IL"},
		{"312-CHICAGO", "CHICAGO"},
		{"", ""},
		{"!!!", ""},
	}

	for _, c := range cases {
		if got := CleanCityName(c.in); got != c.want {
			t.Fatalf("CleanCityName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
