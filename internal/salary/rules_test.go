package salary

import "testing"

func f(v float64) *float64 { return &v }

func TestParseRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		location string
		ok       bool
		want     Normalization
	}{
		{
			name:     "us annual range",
			text:     "$90,000 - $110,000 a year",
			location: "Austin, TX",
			ok:       true,
			want:     Normalization{Min: f(90000), Max: f(110000), Currency: "USD", Period: PeriodYear, Confidence: 1.0, Source: SourceRule},
		},
		{
			name:     "uk k-suffixed range",
			text:     "£45k - £55k per annum",
			location: "London",
			ok:       true,
			want:     Normalization{Min: f(45000), Max: f(55000), Currency: "GBP", Period: PeriodYear, Confidence: 1.0, Source: SourceRule},
		},
		{
			name:     "canadian hourly single",
			text:     "CAD 40/hr",
			location: "",
			ok:       true,
			want:     Normalization{Min: f(40), Max: f(40), Currency: "CAD", Period: PeriodHour, Confidence: 1.0, Source: SourceRule},
		},
		{
			name:     "dollar in canada",
			text:     "$80,000 per year",
			location: "Toronto, ON",
			ok:       true,
			want:     Normalization{Min: f(80000), Max: f(80000), Currency: "CAD", Period: PeriodYear, Confidence: 1.0, Source: SourceRule},
		},
		{
			name:     "up to is a ceiling only",
			text:     "Up to $120k annually",
			location: "Remote, US",
			ok:       true,
			want:     Normalization{Min: nil, Max: f(120000), Currency: "USD", Period: PeriodYear, Confidence: 1.0, Source: SourceRule},
		},
		{
			name:     "reversed range is swapped",
			text:     "$110,000 to $90,000 a year",
			location: "NYC",
			ok:       true,
			want:     Normalization{Min: f(90000), Max: f(110000), Currency: "USD", Period: PeriodYear, Confidence: 1.0, Source: SourceRule},
		},
		{
			name: "no period word",
			text: "$90,000 - $110,000",
			ok:   false,
		},
		{
			name: "no currency marker",
			text: "90,000 - 110,000 a year",
			ok:   false,
		},
		{
			name: "free text",
			text: "Competitive pay, reviewed twice a year",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseRules(tc.text, tc.location)
			if ok != tc.ok {
				t.Fatalf("ok: expected %v, got %v", tc.ok, ok)
			}
			if !ok {
				return
			}

			assertAmount(t, "min", got.Min, tc.want.Min)
			assertAmount(t, "max", got.Max, tc.want.Max)
			if got.Currency != tc.want.Currency {
				t.Errorf("currency: expected %q, got %q", tc.want.Currency, got.Currency)
			}
			if got.Period != tc.want.Period {
				t.Errorf("period: expected %q, got %q", tc.want.Period, got.Period)
			}
			if got.Confidence != tc.want.Confidence {
				t.Errorf("confidence: expected %v, got %v", tc.want.Confidence, got.Confidence)
			}
			if got.Source != tc.want.Source {
				t.Errorf("source: expected %q, got %q", tc.want.Source, got.Source)
			}
		})
	}
}

func assertAmount(t *testing.T, field string, got, want *float64) {
	t.Helper()

	switch {
	case want == nil && got != nil:
		t.Errorf("%s: expected nil, got %v", field, *got)
	case want != nil && got == nil:
		t.Errorf("%s: expected %v, got nil", field, *want)
	case want != nil && got != nil && *got != *want:
		t.Errorf("%s: expected %v, got %v", field, *want, *got)
	}
}

func TestHasDigits(t *testing.T) {
	t.Parallel()

	if HasDigits("Competitive salary") {
		t.Fatal("text without digits must not report digits")
	}
	if !HasDigits("$90k") {
		t.Fatal("text with digits must report digits")
	}
	if HasDigits("") {
		t.Fatal("empty text must not report digits")
	}
}

func TestMapPeriod(t *testing.T) {
	t.Parallel()

	cases := map[string]Period{
		"year":      PeriodYear,
		"Annually":  PeriodYear,
		"per year":  PeriodYear,
		"month":     PeriodMonth,
		"hourly":    PeriodHour,
		"an hour":   PeriodHour,
		"fortnight": PeriodUnknown,
		"":          PeriodUnknown,
	}

	for token, want := range cases {
		if got := MapPeriod(token); got != want {
			t.Errorf("MapPeriod(%q): expected %q, got %q", token, want, got)
		}
	}
}

func TestResolveSymbol(t *testing.T) {
	t.Parallel()

	cases := []struct {
		symbol   string
		location string
		want     string
	}{
		{"$", "San Francisco, CA", "USD"},
		{"$", "Toronto, ON", "CAD"},
		{"$", "", "USD"},
		{"C$", "anywhere", "CAD"},
		{"£", "", "GBP"},
		{"€", "Berlin", "EUR"},
		{"usd", "", "USD"},
		{"¥", "", ""},
	}

	for _, tc := range cases {
		if got := ResolveSymbol(tc.symbol, tc.location); got != tc.want {
			t.Errorf("ResolveSymbol(%q, %q): expected %q, got %q", tc.symbol, tc.location, tc.want, got)
		}
	}
}
