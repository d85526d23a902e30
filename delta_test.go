package plate

import (
	"strconv"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
)

func TestParseDelta(t *testing.T) {
	t.Run("accepts every value in range", func(t *testing.T) {
		for value := MinDelta; value <= MaxDelta; value++ {
			delta, ok := ParseDelta([]byte(strconv.Itoa(int(value))))
			assert.True(t, ok, "value %d", value)
			assert.Equal(t, value, delta)
		}
	})

	t.Run("rejects values outside the range", func(t *testing.T) {
		for _, body := range []string{"0", "100", "150", "4294967295", "4294967296", "99999999999999999999"} {
			_, ok := ParseDelta([]byte(body))
			assert.False(t, ok, "body %q", body)
		}
	})

	t.Run("rejects signs and whitespace", func(t *testing.T) {
		for _, body := range []string{"+5", "-5", " 5", "5 ", "5\n", "\t5", "0x5", "5.0", "1_0", ""} {
			_, ok := ParseDelta([]byte(body))
			assert.False(t, ok, "body %q", body)
		}
	})

	t.Run("rejects invalid utf-8", func(t *testing.T) {
		_, ok := ParseDelta([]byte{0xff, '5'})
		assert.False(t, ok)
	})

	t.Run("rejects words", func(t *testing.T) {
		f := faker.New()
		for i := 0; i < 20; i++ {
			word := f.Lorem().Word()
			_, ok := ParseDelta([]byte(word))
			assert.False(t, ok, "body %q", word)
		}
	})

	t.Run("accepts leading zeros", func(t *testing.T) {
		delta, ok := ParseDelta([]byte("07"))
		assert.True(t, ok)
		assert.Equal(t, Delta(7), delta)
	})
}
