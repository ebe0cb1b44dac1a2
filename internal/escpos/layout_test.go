package escpos

import (
	"reflect"
	"testing"
)

func TestWrap_WordBoundaries(t *testing.T) {
	got := Wrap("Cafe Santo Domingo molido 454g", 12)
	want := []string{"Cafe Santo", "Domingo", "molido 454g"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrap mismatch:\n got:  %q\n want: %q", got, want)
	}
}

func TestWrap_HardCutsOversizedWords(t *testing.T) {
	got := Wrap("7461234567890123456", 8)
	want := []string{"74612345", "67890123", "456"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrap mismatch:\n got:  %q\n want: %q", got, want)
	}
}

func TestWrap_PreservesBlankLines(t *testing.T) {
	got := Wrap("linea uno\n\nlinea dos", 20)
	want := []string{"linea uno", "", "linea dos"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrap mismatch:\n got:  %q\n want: %q", got, want)
	}
}

func TestTruncate_NoEllipsis(t *testing.T) {
	got := Truncate("Jabon de cuaba tradicional", 10)
	if got != "Jabon de c" {
		t.Errorf("Expected hard cut %q, got %q", "Jabon de c", got)
	}
	if got := Truncate("corto", 10); got != "corto" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
}

func TestTwoColumn_RightAligned(t *testing.T) {
	got := TwoColumn("TOTAL", "513.30", 20)
	if got != "TOTAL         513.30" {
		t.Errorf("TwoColumn mismatch: %q", got)
	}
	if len([]rune(got)) != 20 {
		t.Errorf("Expected exact width 20, got %d", len([]rune(got)))
	}
}

func TestTwoColumn_CutsLeftForValue(t *testing.T) {
	got := TwoColumn("Descripcion larguisima de articulo", "1,250.00", 20)
	if got != "Descripcion 1,250.00" {
		t.Errorf("TwoColumn mismatch: %q", got)
	}
}

func TestCenter_OddGap(t *testing.T) {
	got := Center("ABC", 8)
	if got != "  ABC" {
		t.Errorf("Expected two-space lead, got %q", got)
	}
}

func TestPadLeft(t *testing.T) {
	if got := PadLeft("78.30", 10); got != "     78.30" {
		t.Errorf("PadLeft mismatch: %q", got)
	}
}
