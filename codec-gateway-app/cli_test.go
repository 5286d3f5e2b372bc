package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/compose-network/bodycodec/x/envelope"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_EncodeThenDecode(t *testing.T) {
	for _, name := range []string{"json", "gzip-json", "bson", "gzip-bson", "binary"} {
		t.Run(name, func(t *testing.T) {
			encoded, err := runCLI(t, `{"id":100,"name":"order"}`, "encode", "--codec", name, "--type", "orders.created")
			require.NoError(t, err)

			var view messageView
			require.NoError(t, yaml.Unmarshal([]byte(encoded), &view))
			assert.NotEmpty(t, view.Body)
			assert.Equal(t, "orders.created", view.Properties["MessageType"])

			decoded, err := runCLI(t, encoded, "decode", "-o", "json")
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":100,"name":"order"}`, decoded)
		})
	}
}

func TestCLI_EncodeJSONOutput(t *testing.T) {
	out, err := runCLI(t, `{"id":1}`, "encode", "--codec", "gzip-xml", "-o", "json", "--default-codec", "json")
	// maps have no XML representation
	require.Error(t, err)
	assert.Empty(t, out)

	out, err = runCLI(t, `{"id":1}`, "encode", "-o", "json", "--default-codec", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"content_type": "application/json"`)
}

func TestCLI_Protobuf(t *testing.T) {
	encoded, err := runCLI(t, `{"id":7}`, "encode", "--protobuf", "--codec", "protobuf")
	require.NoError(t, err)

	decoded, err := runCLI(t, encoded, "decode", "--protobuf", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, decoded)

	_, err = runCLI(t, encoded, "decode", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no deserializer registered for application/x-protobuf")
}

func TestCLI_Codecs(t *testing.T) {
	out, err := runCLI(t, "", "codecs", "--default-codec", "gzip-json")
	require.NoError(t, err)

	var listing struct {
		Codecs []codecView `yaml:"codecs"`
		Deser  []string    `yaml:"deserializers"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &listing))
	assert.Len(t, listing.Codecs, 7)
	assert.Len(t, listing.Deser, 7)
	for _, c := range listing.Codecs {
		assert.Equal(t, c.Name == "gzip-json", c.Default, c.Name)
	}
}

func TestCLI_Errors(t *testing.T) {
	_, err := runCLI(t, `{}`, "encode", "--codec", "yaml")
	assert.ErrorContains(t, err, "unknown codec")

	_, err = runCLI(t, `not json`, "encode")
	assert.ErrorContains(t, err, "payload is not valid JSON")

	_, err = runCLI(t, `{}`, "encode", "-o", "toml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = runCLI(t, "", "codecs", "--default-codec", "nope")
	assert.ErrorContains(t, err, "invalid flags")

	_, err = runCLI(t, "content_type: application/json\nbody: '!!!'\n", "decode")
	assert.ErrorContains(t, err, "base64")
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}

func TestMessageView_EmptyBody(t *testing.T) {
	t.Parallel()

	for _, body := range [][]byte{nil, {}, []byte("x")} {
		msg := envelope.NewWithBody("application/fake", body, nil)

		data, err := yaml.Marshal(viewOf(msg))
		require.NoError(t, err)

		var view messageView
		require.NoError(t, yaml.Unmarshal(data, &view))
		out, err := view.message()
		require.NoError(t, err)
		assert.Equal(t, msg.HasBody(), out.HasBody(), "body %v", body)
		assert.Equal(t, body, out.Body)
	}
}
