package speech

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"150-200%", "one hundred and fifty to two hundred percent"},
		{"25-35%", "twenty five to thirty five percent"},
		{"6-8 weeks", "six to eight weeks"},
		{"25%", "twenty five percent"},
		{"1500%", "1500 percent"},
		{"3-5  months", "three to five months"},
		{"12-18 hours", "twelve to eighteen hours"},
		{"10-20 years", "10-20 years"},
		{"no numbers here", "no numbers here"},
		{"", ""},
		{
			"Clients see 180-260% ROI within 6-8 weeks and cut costs by 30%.",
			"Clients see one hundred and eighty to two hundred and sixty percent ROI within six to eight weeks and cut costs by thirty percent.",
		},
		{"growth of 2.5% year over year", "growth of 2.5% year over year"},
		{"1.5-2%", "1.5-2%"},
		{"2.25-35%", "2.25-35%"},
		{"0.5-1.5 weeks", "0.5-1.5 weeks"},
		{"from 2.5% to 30%", "from 2.5% to thirty percent"},
		{"Done.5-6 weeks", "Done.five to six weeks"},
		{"100% uptime", "one hundred percent uptime"},
		{"0%", "zero percent"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestNumberToWords(t *testing.T) {
	cases := map[string]string{
		"0":    "zero",
		"7":    "seven",
		"007":  "seven",
		"10":   "ten",
		"19":   "nineteen",
		"20":   "twenty",
		"42":   "forty two",
		"99":   "ninety nine",
		"100":  "one hundred",
		"105":  "one hundred and five",
		"113":  "one hundred and thirteen",
		"150":  "one hundred and fifty",
		"999":  "nine hundred and ninety nine",
		"1000": "1000",
		"12ab": "12ab",
	}
	for in, want := range cases {
		if got := NumberToWords(in); got != want {
			t.Fatalf("NumberToWords(%q)=%q want %q", in, got, want)
		}
	}

	overflow := "99999999999999999999999"
	if got := NumberToWords(overflow); got != overflow {
		t.Fatalf("expected overflowing digits unchanged, got %q", got)
	}
}

func TestNormalizeIsIdempotentOnOutput(t *testing.T) {
	in := "Expect 40-60% savings in 2-3 months."
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Fatalf("expected stable output, got %q then %q", once, twice)
	}
}
