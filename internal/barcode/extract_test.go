package barcode

import "testing"

func TestExtractValidBarcodes(t *testing.T) {
	cases := []string{
		"49012345",           // EAN-8 length
		"4901234567894",      // EAN-13
		"123456789012345678", // max length
	}
	for _, b := range cases {
		got, ok := Extract(b)
		if !ok || got != b {
			t.Errorf("Extract(%q) = %q, %v; want %q, true", b, got, ok, b)
		}

		got, ok = Extract("barcode:" + b)
		if !ok || got != b {
			t.Errorf("Extract(barcode:%q) = %q, %v; want %q, true", b, got, ok, b)
		}
	}
}

func TestExtractPrefixCaseInsensitive(t *testing.T) {
	got, ok := Extract("BARCODE:4901234567894")
	if !ok || got != "4901234567894" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestExtractFromURI(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"https://shop.example/p/widget-pro?barcode=4901234567894", "4901234567894"},
		{"https://shop.example/item?code=4901234567894", "4901234567894"},
		{"https://shop.example/products/4901234567894/detail", "4901234567894"},
	}
	for _, c := range cases {
		got, ok := Extract(c.raw)
		if !ok || got != c.want {
			t.Errorf("Extract(%q) = %q, %v; want %q", c.raw, got, ok, c.want)
		}
	}
}

func TestExtractDigitRunInText(t *testing.T) {
	got, ok := Extract("JAN 4901234567894 (お菓子)")
	if !ok || got != "4901234567894" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestExtractStripsNonDigits(t *testing.T) {
	got, ok := Extract("4-901234-567894")
	if !ok || got != "4901234567894" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestExtractNothing(t *testing.T) {
	cases := []string{
		"",
		"no digits here",
		"1234567",         // too short
		"code 123 and 45", // runs too short
		"https://shop.example/p/widget-pro",
	}
	for _, raw := range cases {
		if got, ok := Extract(raw); ok {
			t.Errorf("Extract(%q) = %q; want no barcode", raw, got)
		}
	}
}

func TestExtractKeyword(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"https://shop.example/p/widget-pro?barcode=4901234567894", "widget-pro"},
		{"https://shop.example/search?q=コーヒー", "コーヒー"},
		{"コーヒー豆 200g", "コーヒー豆 200g"},
		{"4901234567894", ""},
		{"barcode:4901234567894", ""},
		{"https://shop.example/products/4901234567894", ""},
	}
	for _, c := range cases {
		if got := ExtractKeyword(c.raw); got != c.want {
			t.Errorf("ExtractKeyword(%q) = %q; want %q", c.raw, got, c.want)
		}
	}
}
