package signature

import (
	"testing"

	"foodorder/internal/domain"
)

func opt(label string) domain.Option {
	return domain.Option{Label: label, PriceCents: 1000}
}

func TestCompute_OrderIndependent(t *testing.T) {
	perms := [][]domain.Option{
		{opt("Trứng"), opt("Phô mai"), opt("Hành phi")},
		{opt("Phô mai"), opt("Hành phi"), opt("Trứng")},
		{opt("Hành phi"), opt("Trứng"), opt("Phô mai")},
		{opt("Trứng"), opt("Hành phi"), opt("Phô mai")},
		{opt("Phô mai"), opt("Trứng"), opt("Hành phi")},
		{opt("Hành phi"), opt("Phô mai"), opt("Trứng")},
	}
	first := Compute("pho-bo", domain.Selections{Toppings: perms[0]})
	for i, p := range perms[1:] {
		if got := Compute("pho-bo", domain.Selections{Toppings: p}); got != first {
			t.Fatalf("permutation %d yielded %q, expected %q", i+1, got, first)
		}
	}
}

func TestCompute_Sentinels(t *testing.T) {
	got := Compute("pho-bo", domain.Selections{})
	want := "pho-bo|noSize|noBase|noTop|noAdd|noNote"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompute_NoteTrimmedAndDistinct(t *testing.T) {
	a := Compute("pho-bo", domain.Selections{Note: "ít cay"})
	b := Compute("pho-bo", domain.Selections{Note: "  ít cay  "})
	if a != b {
		t.Fatalf("trimmed notes should match: %q vs %q", a, b)
	}
	c := Compute("pho-bo", domain.Selections{Note: "nhiều cay"})
	if a == c {
		t.Fatalf("different notes must not collide: %q", a)
	}
}

func TestCompute_SizeAndBaseParticipate(t *testing.T) {
	size := opt("Lớn")
	base := opt("Đế dày")
	plain := Compute("pizza-hs", domain.Selections{})
	withSize := Compute("pizza-hs", domain.Selections{Size: &size})
	withBase := Compute("pizza-hs", domain.Selections{Base: &base})
	if plain == withSize || plain == withBase || withSize == withBase {
		t.Fatalf("size/base selections must change the signature: %q %q %q", plain, withSize, withBase)
	}
}

func TestCompute_DifferentItemsNeverCollide(t *testing.T) {
	if Compute("pho-bo", domain.Selections{}) == Compute("pho-ga", domain.Selections{}) {
		t.Fatal("item id must participate in the signature")
	}
}
