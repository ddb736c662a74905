package telegram

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	vectorToken = "123:ABC"
	vectorData  = "auth_date=1700000000&query_id=AAA&user=%7B%22id%22%3A1%2C%22first_name%22%3A%22A%22%7D"
	vectorHash  = "d66bc9dab44421feec12b5fdc05bc5e9e86117081338b38cebd43547a73e0ae8"
)

func TestDataCheckString_KnownVector(t *testing.T) {
	values, err := url.ParseQuery(vectorData + "&hash=" + vectorHash)
	require.NoError(t, err)

	require.Equal(t,
		"auth_date=1700000000\nquery_id=AAA\nuser={\"id\":1,\"first_name\":\"A\"}",
		DataCheckString(values),
	)
	require.Equal(t, vectorHash, Sign(vectorToken, DataCheckString(values)))
	require.True(t, Verify(vectorToken, values))
}

func TestSign_Deterministic(t *testing.T) {
	check := "auth_date=1\nuser={\"id\":7}"
	require.Equal(t, Sign("42:secret", check), Sign("42:secret", check))
	require.NotEqual(t, Sign("42:secret", check), Sign("43:secret", check))
	require.Len(t, Sign("42:secret", check), 64)
}

func TestDataCheckString_ByteOrder(t *testing.T) {
	values := url.Values{
		"b":     {"2"},
		"a_b":   {"3"},
		"A":     {"4"},
		"a":     {"1"},
		"hash":  {"ignored"},
		"a.b":   {"5"},
		"query": {"x=y"},
	}
	// '.' (0x2E) < '_' (0x5F) and upper case sorts before lower case.
	require.Equal(t, "A=4\na=1\na.b=5\na_b=3\nb=2\nquery=x=y", DataCheckString(values))
}

func TestDataCheckString_KeyOrderIndependent(t *testing.T) {
	first, err := url.ParseQuery("user=%7B%22id%22%3A5%7D&auth_date=10&query_id=Q&hash=h")
	require.NoError(t, err)
	second, err := url.ParseQuery("hash=h&query_id=Q&auth_date=10&user=%7B%22id%22%3A5%7D")
	require.NoError(t, err)

	require.Equal(t, DataCheckString(first), DataCheckString(second))
}

func TestVerify_TamperedValues(t *testing.T) {
	signed := SignValues("99:token", url.Values{
		"auth_date":   {"1700000000"},
		"query_id":    {"AAHdF6IQAAAAAN0XohDhrOrc"},
		"start_param": {"ref_42"},
		"user":        {`{"id":279058397,"first_name":"Vlad","username":"vdkfrost"}`},
	})
	values, err := url.ParseQuery(signed)
	require.NoError(t, err)
	require.True(t, Verify("99:token", values))

	for key := range values {
		if key == "hash" {
			continue
		}
		original := values.Get(key)
		for i := 0; i < len(original); i++ {
			tampered := cloneValues(values)
			b := []byte(original)
			b[i] ^= 0x01
			tampered.Set(key, string(b))
			require.Falsef(t, Verify("99:token", tampered), "key %s byte %d", key, i)
		}
	}
}

func TestVerify_WrongTokenOrHash(t *testing.T) {
	values, err := url.ParseQuery(vectorData + "&hash=" + vectorHash)
	require.NoError(t, err)

	require.False(t, Verify("123:ABD", values))

	values.Set("hash", "")
	require.False(t, Verify(vectorToken, values))

	values.Set("hash", "D66BC9DAB44421FEEC12B5FDC05BC5E9E86117081338B38CEBD43547A73E0AE8")
	require.False(t, Verify(vectorToken, values), "comparison is case sensitive")
}

func TestSignValues_ReplacesHash(t *testing.T) {
	raw := SignValues(vectorToken, url.Values{
		"auth_date": {"1700000000"},
		"query_id":  {"AAA"},
		"user":      {`{"id":1,"first_name":"A"}`},
		"hash":      {"stale"},
	})
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	require.Equal(t, vectorHash, values.Get("hash"))
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
