package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/config"
	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

func newTestRakuten(t *testing.T, handler http.HandlerFunc) (*RakutenClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewRakutenClient(config.RakutenConfig{ApplicationID: "1234567890", AffiliateID: "aff-1"}, time.Second)
	c.SetBaseURL(srv.URL)
	return c, srv
}

func itemsBody(names ...string) string {
	type wrapped struct {
		Item map[string]interface{} `json:"Item"`
	}
	var items []wrapped
	for i, n := range names {
		items = append(items, wrapped{Item: map[string]interface{}{
			"itemName":    n,
			"itemPrice":   1000 + i,
			"itemCaption": "コーヒー豆の説明",
			"shopName":    "テスト店",
			"mediumImageUrls": []map[string]string{
				{"imageUrl": "https://img.example/1.jpg"},
			},
		}})
	}
	b, _ := json.Marshal(map[string]interface{}{"Items": items})
	return string(b)
}

func TestRakutenKeywordSearch(t *testing.T) {
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "コーヒー" {
			t.Errorf("keyword = %q", r.URL.Query().Get("keyword"))
		}
		fmt.Fprint(w, itemsBody("コーヒー豆 深煎り", "コーヒー豆 浅煎り", "コーヒーミル"))
	})

	out := c.LookupByKeyword(context.Background(), "コーヒー", 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(out))
	}

	// Confidence decays 0.74, 0.69, 0.64
	wantConf := []float64{0.74, 0.69, 0.64}
	for i, s := range out {
		if diff := s.Confidence - wantConf[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("hit %d confidence = %v, want %v", i, s.Confidence, wantConf[i])
		}
		if s.Category != models.CategoryFood {
			t.Errorf("hit %d category = %q, want %q", i, s.Category, models.CategoryFood)
		}
		if s.Source != "Rakuten API(keyword)" {
			t.Errorf("hit %d source = %q", i, s.Source)
		}
	}
	if out[0].Price != 1000 || out[0].Brand != "テスト店" || out[0].ImageURL != "https://img.example/1.jpg" {
		t.Errorf("fields not mapped: %+v", out[0])
	}
}

func TestRakutenBarcodeSearchUsesHigherBase(t *testing.T) {
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemsBody("商品A"))
	})

	out := c.LookupByBarcode(context.Background(), "4901234567894")
	if len(out) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(out))
	}
	if out[0].Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", out[0].Confidence)
	}
	// No code field in the response: the query barcode is the hint
	if out[0].Barcode != "4901234567894" {
		t.Errorf("barcode hint not applied: %q", out[0].Barcode)
	}
}

func TestRakutenConfidenceClamp(t *testing.T) {
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("コーヒー %d", i)
	}
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemsBody(names...))
	})

	out := c.LookupByKeyword(context.Background(), "コーヒー", 10)
	if len(out) != 10 {
		t.Fatalf("expected 10 hits, got %d", len(out))
	}
	// 0.74 - 0.05*9 = 0.29 clamps at 0.45
	if last := out[len(out)-1].Confidence; last != 0.45 {
		t.Errorf("last confidence = %v, want clamp 0.45", last)
	}
}

func TestRakutenErrorsAbsorbed(t *testing.T) {
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"wrong_parameter","error_description":"keyword is not valid"}`)
	})
	if out := c.LookupByKeyword(context.Background(), "x", 3); len(out) != 0 {
		t.Errorf("API error must yield empty result, got %+v", out)
	}

	unconfigured := NewRakutenClient(config.RakutenConfig{}, time.Second)
	if out := unconfigured.LookupByKeyword(context.Background(), "x", 3); len(out) != 0 {
		t.Errorf("missing credentials must yield empty result, got %+v", out)
	}
}

func TestRakutenBarcodeFromCodeField(t *testing.T) {
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Items":[{"Item":{"itemName":"本","janCode":"9784001234567"}}]}`)
	})
	out := c.LookupByKeyword(context.Background(), "本", 1)
	if len(out) != 1 || out[0].Barcode != "9784001234567" {
		t.Fatalf("jan code not extracted: %+v", out)
	}
}

func TestRakutenSelfTest(t *testing.T) {
	// Healthy endpoint
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemsBody("x"))
	})
	res := c.SelfTest(context.Background())
	if !res.OK || res.Degraded {
		t.Errorf("expected clean success: %+v", res)
	}

	// Invalid credential format
	bad := NewRakutenClient(config.RakutenConfig{ApplicationID: "not-numeric"}, time.Second)
	if res := bad.SelfTest(context.Background()); res.OK {
		t.Errorf("non-numeric app id must fail: %+v", res)
	}
}

func TestRakutenSelfTestAffiliateDegrade(t *testing.T) {
	c, _ := newTestRakuten(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("affiliateId") != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"wrong_parameter","error_description":"affiliateId is not valid"}`)
			return
		}
		fmt.Fprint(w, itemsBody("x"))
	})

	res := c.SelfTest(context.Background())
	if !res.OK || !res.Degraded {
		t.Errorf("expected degraded success: %+v", res)
	}
	t.Logf("self test message: %s", res.Message)
}
