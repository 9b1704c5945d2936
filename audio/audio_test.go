package audio

import "testing"

func TestIsBluetooth(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"Sony WH-1000XM5", true},
		{"Jabra Elite 85t", true},
		{"Galaxy Buds2 Pro", true},
		{"Headset (Bluetooth)", true},
		{"JBL Tune 760NC", true},
		{"Built-in Microphone", false},
		{"USB Audio Device", false},
		{"Blue Yeti", false},
		{"Scarlett 2i2 USB", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsBluetooth(tc.name); got != tc.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
