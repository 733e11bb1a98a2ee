package model

import (
	"errors"
	"testing"
)

// TestParseID はParseID関数を検証する。
func TestParseID(t *testing.T) {
	t.Parallel()

	t.Run("NewIDで生成した識別子を16進文字列から復元できること", func(t *testing.T) {
		t.Parallel()

		id := NewID()
		got, err := ParseID(id.Hex())
		if err != nil {
			t.Fatalf("ParseID()でエラーが発生: %v", err)
		}
		if got != id {
			t.Errorf("ParseID() = %s, want %s", got.Hex(), id.Hex())
		}
	})

	tests := []struct {
		name  string
		input string
	}{
		{name: "空文字列", input: ""},
		{name: "桁数不足", input: "abc123"},
		{name: "16進以外の文字を含む", input: "zzzzzzzzzzzzzzzzzzzzzzzz"},
		{name: "UUID形式", input: "550e8400-e29b-41d4-a716-446655440000"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name+"の場合ErrInvalidIDを返すこと", func(t *testing.T) {
			t.Parallel()

			_, err := ParseID(tt.input)
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("ParseID(%q) error = %v, want ErrInvalidID", tt.input, err)
			}
		})
	}
}
