package extract

import "testing"

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-05-07", "07.05.2024"},
		{"1999-12-31", "31.12.1999"},
		{"not-a-date", "not-a-date"},
		{"", ""},
		{"2024-5-7", "2024-5-7"},                 // not zero-padded, passes through
		{"2024-05-07T00:00", "2024-05-07T00:00"}, // trailing garbage, passes through
		{"Not detected", "Not detected"},
	}

	for _, c := range cases {
		if got := FormatDate(c.in); got != c.want {
			t.Errorf("FormatDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
