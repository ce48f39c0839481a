package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

func TestWriteInventory(t *testing.T) {
	products := []models.Product{
		{
			ID:             1,
			Barcode:        "4901234567894",
			Name:           "コーヒー豆",
			Category:       models.CategoryFood,
			Price:          980,
			Quantity:       2,
			MovingDecision: models.DecisionDiscard,
			CreatedAt:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := WriteInventory(&buf, products); err != nil {
		t.Fatalf("Failed to write inventory: %v", err)
	}

	// xlsx is a zip container
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("Output is not an xlsx workbook")
	}
}

func TestWriteInventoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInventory(&buf, nil); err != nil {
		t.Fatalf("Empty inventory should still produce a workbook: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Workbook should not be empty")
	}
}

func TestCellAddressing(t *testing.T) {
	if got := cell(0, 0); got != "A1" {
		t.Errorf("cell(0,0) = %q, want A1", got)
	}
	if got := cell(12, 3); got != "M4" {
		t.Errorf("cell(12,3) = %q, want M4", got)
	}
}
