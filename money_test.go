package finbook

import "testing"

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{M(1234.56, "USD"), "$1,234.56"},
		{M(-40, "USD"), "-$40.00"},
		{M(100, "JPY"), "¥100"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("%s %s: got %q, want %q", tc.m.Amount(), tc.m.Currency(), got, tc.want)
		}
	}
}

func TestMoneySignedString(t *testing.T) {
	if got := M(40, "USD").SignedString(); got != "+$40.00" {
		t.Errorf("got %q", got)
	}
	if got := M(0, "USD").SignedString(); got != "-" {
		t.Errorf("zero renders as %q, want -", got)
	}
}

func TestMoneyAddWeakCurrency(t *testing.T) {
	sum := Money{}.Add(M(10, "EUR")).Add(M(5, "EUR"))
	if sum.Currency() != "EUR" || !sum.Equal(M(15, "EUR")) {
		t.Errorf("sum = %s %s", sum.Amount(), sum.Currency())
	}
}

func TestMoneyAddMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding USD to EUR did not panic")
		}
	}()
	M(1, "USD").Add(M(1, "EUR"))
}
