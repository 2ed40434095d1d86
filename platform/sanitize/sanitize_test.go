package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "  Agent d'accueil  ", want: "Agent d'accueil"},
		{in: "<b>Juriste</b> confirmé", want: "Juriste confirmé"},
		{in: "&lt;script&gt;alert(1)&lt;/script&gt;ok", want: "alert(1)ok"},
		{in: "Salaire &gt; SMIC", want: "Salaire > SMIC"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil to stay nil")
	}
	in := " <i>CDI</i> "
	if got := TextPtr(&in); got == nil || *got != "CDI" {
		t.Fatalf("unexpected result %v", got)
	}
}
