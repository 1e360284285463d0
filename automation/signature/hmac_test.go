package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "s3cret"
	testBody   = `{"a":1}`
	// hex(HMAC_SHA256("s3cret", `{"a":1}`))
	testDigest = "5910e62016ef5034272c926c27071992a465c2335cecf41851bda071577f4f6d"
)

func TestCompute(t *testing.T) {
	t.Run("success - sha256", func(t *testing.T) {
		got, err := Compute(SHA256, testSecret, []byte(testBody))
		require.NoError(t, err)
		assert.Equal(t, testDigest, got)
	})

	t.Run("success - sha1", func(t *testing.T) {
		got, err := Compute(SHA1, testSecret, []byte(testBody))
		require.NoError(t, err)
		assert.Equal(t, "79999786a1bff10cd4d7dd0b0752574af76be0b5", got)
	})

	t.Run("error - unknown algorithm", func(t *testing.T) {
		_, err := Compute(Algorithm("md5"), testSecret, []byte(testBody))
		require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})
}

func TestVerifyHMAC(t *testing.T) {
	body := []byte(testBody)

	t.Run("success - bare hex", func(t *testing.T) {
		assert.True(t, VerifyHMAC(SHA256, testSecret, body, testDigest))
	})

	t.Run("success - prefixed form", func(t *testing.T) {
		assert.True(t, VerifyHMAC(SHA256, testSecret, body, "sha256="+testDigest))
	})

	t.Run("success - no secret passes regardless of signature", func(t *testing.T) {
		assert.True(t, VerifyHMAC(SHA256, "", body, ""))
		assert.True(t, VerifyHMAC(SHA256, "", body, "garbage"))
	})

	t.Run("failure - missing signature", func(t *testing.T) {
		assert.False(t, VerifyHMAC(SHA256, testSecret, body, ""))
	})

	t.Run("failure - any single byte body mutation", func(t *testing.T) {
		for i := range body {
			mutated := append([]byte(nil), body...)
			mutated[i] ^= 0x01
			assert.False(t, VerifyHMAC(SHA256, testSecret, mutated, testDigest), "mutation at %d", i)
		}
	})

	t.Run("failure - any single byte signature mutation", func(t *testing.T) {
		for i := range testDigest {
			mutated := []byte(testDigest)
			mutated[i] ^= 0x01
			assert.False(t, VerifyHMAC(SHA256, testSecret, body, string(mutated)), "mutation at %d", i)
		}
	})

	t.Run("failure - wrong algorithm prefix", func(t *testing.T) {
		assert.False(t, VerifyHMAC(SHA256, testSecret, body, "sha1="+testDigest))
	})
}

func TestParseAlgorithm(t *testing.T) {
	algo, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, algo)

	algo, err = ParseAlgorithm(" SHA512 ")
	require.NoError(t, err)
	assert.Equal(t, SHA512, algo)

	_, err = ParseAlgorithm("crc32")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestTimestamped(t *testing.T) {
	body := []byte(testBody)
	ts := "1700000000"
	now := time.Unix(1700000000, 0)
	// hex(HMAC_SHA256("s3cret", `v0:1700000000:{"a":1}`))
	expected := "v0=bd185b05da99402f371e04f620aeca81515f08c0ef7fcf979fccaa4d2f87d47c"

	t.Run("success - sign uses canonical base string", func(t *testing.T) {
		sig, err := Slack.Sign(testSecret, ts, body)
		require.NoError(t, err)
		assert.Equal(t, expected, sig)
	})

	t.Run("success - verify within window", func(t *testing.T) {
		assert.NoError(t, Slack.Verify(testSecret, ts, body, expected, now.Add(4*time.Minute)))
	})

	t.Run("success - no secret passes", func(t *testing.T) {
		assert.NoError(t, Slack.Verify("", "", body, "", now))
	})

	t.Run("error - stale timestamp with matching digest", func(t *testing.T) {
		err := Slack.Verify(testSecret, ts, body, expected, now.Add(6*time.Minute))
		assert.ErrorIs(t, err, ErrTimestampExpired)
	})

	t.Run("error - future timestamp outside window", func(t *testing.T) {
		err := Slack.Verify(testSecret, ts, body, expected, now.Add(-6*time.Minute))
		assert.ErrorIs(t, err, ErrTimestampExpired)
	})

	t.Run("error - body mismatch", func(t *testing.T) {
		err := Slack.Verify(testSecret, ts, []byte(`{"a":2}`), expected, now)
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("error - missing signature", func(t *testing.T) {
		err := Slack.Verify(testSecret, ts, body, "", now)
		assert.ErrorIs(t, err, ErrMissingHeaders)
	})

	t.Run("error - non numeric timestamp", func(t *testing.T) {
		err := Slack.Verify(testSecret, "yesterday", body, expected, now)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})
}

func TestWithinTolerance(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.True(t, WithinTolerance(now.Add(-5*time.Minute), now, 5*time.Minute))
	assert.False(t, WithinTolerance(now.Add(-5*time.Minute-time.Second), now, 5*time.Minute))
	assert.True(t, WithinTolerance(now.Add(5*time.Minute), now, 5*time.Minute))
}
