package ast

import (
	"encoding/json"
	"testing"
)

func TestParseEntityUID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EntityUID
		wantErr bool
	}{
		{"simple", `User::"alice"`, EntityUID{Type: "User", ID: "alice"}, false},
		{"namespaced", `App::Group::"admins"`, EntityUID{Type: "App::Group", ID: "admins"}, false},
		{"escaped quote", `User::"a\"b"`, EntityUID{Type: "User", ID: `a"b`}, false},
		{"empty id", `User::""`, EntityUID{Type: "User", ID: ""}, false},
		{"no separator", `User"alice"`, EntityUID{}, true},
		{"missing quotes", `User::alice`, EntityUID{}, true},
		{"empty type", `::"alice"`, EntityUID{}, true},
		{"empty string", ``, EntityUID{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEntityUID(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseEntityUID(%q) error = nil, want error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntityUID(%q) error = %v, want nil", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseEntityUID(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestEntityUIDStringRoundTrip(t *testing.T) {
	uid := NewEntityUID("App::Group", `we"ird`)

	got, err := ParseEntityUID(uid.String())
	if err != nil {
		t.Fatalf("ParseEntityUID(String()) error = %v, want nil", err)
	}
	if got != uid {
		t.Errorf("round trip = %v, want %v", got, uid)
	}
}

func TestEntityUIDJSON(t *testing.T) {
	env := SlotEnv{SlotPrincipal: NewEntityUID("User", "alice")}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v, want nil", err)
	}
	want := `{"?principal":"User::\"alice\""}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var got SlotEnv
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}
	if !got.Equal(env) {
		t.Errorf("Unmarshal() = %v, want %v", got, env)
	}
}
