package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

// memStore is an in-memory ProductStore for tests.
type memStore struct {
	products []models.Product
	failing  bool
}

func (m *memStore) FindByBarcode(barcode string) (*models.Product, error) {
	if m.failing {
		return nil, errors.New("store unavailable")
	}
	for i := range m.products {
		if m.products[i].Barcode == barcode {
			return &m.products[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(id int64) (*models.Product, error) {
	if m.failing {
		return nil, errors.New("store unavailable")
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) SearchByText(query string, limit int) ([]models.Product, error) {
	if m.failing {
		return nil, errors.New("store unavailable")
	}
	q := strings.ToLower(query)
	var out []models.Product
	for _, p := range m.products {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(p.Barcode, q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) Insert(p *models.Product) (int64, error) {
	if m.failing {
		return 0, errors.New("store unavailable")
	}
	p.ID = int64(len(m.products) + 1)
	m.products = append(m.products, *p)
	return p.ID, nil
}

func (m *memStore) Update(p *models.Product) (int64, error) {
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = *p
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) Delete(id int64) error { return nil }

func (m *memStore) List() ([]models.Product, error) { return m.products, nil }

func TestLocalLookupByBarcode(t *testing.T) {
	s := &memStore{products: []models.Product{
		{ID: 42, Barcode: "4901234567894", Name: "コーヒー豆", Category: models.CategoryFood},
	}}
	c := NewLocalClient(s)

	out := c.LookupByBarcode(context.Background(), "4901234567894")
	if len(out) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(out))
	}
	hit := out[0]
	if hit.ExistingProductID != 42 {
		t.Errorf("existing product id = %d", hit.ExistingProductID)
	}
	if hit.Confidence != 1.0 || hit.Source != "Local DB" {
		t.Errorf("confidence/source: %v %q", hit.Confidence, hit.Source)
	}

	if out := c.LookupByBarcode(context.Background(), "9999999999999"); len(out) != 0 {
		t.Errorf("miss must be empty, got %+v", out)
	}
	if out := c.LookupByBarcode(context.Background(), "short"); len(out) != 0 {
		t.Errorf("invalid barcode must be empty, got %+v", out)
	}
}

func TestLocalLookupByKeywordCap(t *testing.T) {
	s := &memStore{}
	for i := 0; i < 12; i++ {
		s.products = append(s.products, models.Product{
			ID:      int64(i + 1),
			Barcode: "490123456789" + string(rune('0'+i%10)),
			Name:    "コーヒー関連グッズ",
		})
	}
	c := NewLocalClient(s)

	out := c.LookupByKeyword(context.Background(), "コーヒー", 100)
	if len(out) > localNameSearchLimit {
		t.Errorf("result not capped: %d", len(out))
	}
}

func TestLocalFailuresAreAbsorbed(t *testing.T) {
	c := NewLocalClient(&memStore{failing: true})
	if out := c.LookupByBarcode(context.Background(), "4901234567894"); len(out) != 0 {
		t.Errorf("store failure must be empty, got %+v", out)
	}
	if out := c.LookupByKeyword(context.Background(), "x", 5); len(out) != 0 {
		t.Errorf("store failure must be empty, got %+v", out)
	}
}
