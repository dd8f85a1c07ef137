package pricing

import "testing"

func TestOffer_TieredBrackets(t *testing.T) {
	tests := []struct {
		name   string
		budget int
		want   int
	}{
		// 10% bracket, rounded to 50.
		{"small budget", 400, 350},
		{"exact multiple of 50", 500, 450},
		{"rounds up to 50", 700, 650},
		{"top of small bracket", 999, 900},

		// 15% bracket.
		{"bottom of mid bracket", 1000, 850},
		{"mid bracket rounds to 100", 3000, 2600},
		{"top of mid bracket", 4999, 4200},

		// 20% bracket, rounded to 100.
		{"bottom of high bracket", 5000, 4000},
		{"large budget", 12000, 9600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offer(tt.budget)
			if got != tt.want {
				t.Errorf("Offer(%d) = %d, want %d", tt.budget, got, tt.want)
			}
		})
	}
}

func TestOffer_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if Offer(3000) != 2600 {
			t.Fatal("Offer(3000) is not deterministic")
		}
	}
}

// Offers for any budget worth responding to are positive, strictly below
// the budget, and land on the 50-unit grid (100-unit when the discounted
// price reaches 1000).
func TestOffer_Properties(t *testing.T) {
	for budget := 500; budget <= 20000; budget++ {
		offer := Offer(budget)

		if offer <= 0 {
			t.Fatalf("Offer(%d) = %d, want positive", budget, offer)
		}
		if offer >= budget {
			t.Fatalf("Offer(%d) = %d, want below budget", budget, offer)
		}
		if offer%50 != 0 {
			t.Fatalf("Offer(%d) = %d, want multiple of 50", budget, offer)
		}
		if offer >= 1000 && offer%100 != 0 {
			t.Fatalf("Offer(%d) = %d, want multiple of 100", budget, offer)
		}
	}
}
