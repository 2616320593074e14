package main

import (
	"reflect"
	"testing"

	"github.com/odelang/odebridge/bridge"
)

func TestParseVec(t *testing.T) {
	cases := []struct {
		in      string
		want    []float64
		wantErr bool
	}{
		{"1,2,3", []float64{1, 2, 3}, false},
		{" 0.5 , -1e3 ", []float64{0.5, -1000}, false},
		{"1,,2", []float64{1, 2}, false},
		{"", []float64{}, false},
		{"1,x", nil, true},
	}
	for _, tc := range cases {
		got, err := parseVec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseVec(%q) accepted", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVec(%q) = %v", tc.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseVec(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestConfigProtocol(t *testing.T) {
	for in, want := range map[string]bridge.Protocol{
		"":         bridge.ProtocolAuto,
		"auto":     bridge.ProtocolAuto,
		"shared":   bridge.ProtocolShared,
		"discrete": bridge.ProtocolDiscrete,
	} {
		got, err := (&config{Protocol: in}).protocol()
		if err != nil || got != want {
			t.Errorf("protocol(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := (&config{Protocol: "carrier-pigeon"}).protocol(); err == nil {
		t.Error("unknown protocol accepted")
	}
}
