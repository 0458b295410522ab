package session

import (
	"testing"

	"github.com/MrEthical07/goAuthClient/role"
)

// FuzzSessionDecode feeds arbitrary bytes to Decode. It must never panic, and anything it
// accepts must encode back to the same bytes.
func FuzzSessionDecode(f *testing.F) {
	sess := &Session{
		AccountID: "user1",
		Token:     "tok",
		TokenType: DefaultTokenType,
		Roles:     role.Of(role.Admin, role.User),
	}
	encoded, err := Encode(sess)
	if err == nil {
		f.Add(encoded)
		f.Add(encoded[:len(encoded)/2])
	}

	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{CurrentSchemaVersion})
	f.Add([]byte{255, 255, 255})

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Decode(data)
		if err != nil {
			return
		}
		if s.AccountID == "" || s.Token == "" {
			t.Fatalf("decoded invalid session: %+v", s)
		}
		if _, err := Encode(s); err != nil {
			t.Fatalf("re-encode accepted session: %v", err)
		}
	})
}
