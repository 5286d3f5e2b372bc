package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/compose-network/bodycodec/log"
	bodyhttp "github.com/compose-network/bodycodec/x/body/http"
	"github.com/compose-network/bodycodec/x/codec"
	"github.com/compose-network/bodycodec/x/envelope"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// messageView is the printable form of an envelope, body in base64
type messageView struct {
	MessageID   string              `json:"message_id,omitempty"  yaml:"message_id,omitempty"`
	ContentType string              `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Body        *string             `json:"body,omitempty"        yaml:"body,omitempty"`
	Properties  envelope.Properties `json:"properties,omitempty"  yaml:"properties,omitempty"`
}

func viewOf(msg *envelope.Message) messageView {
	v := messageView{MessageID: msg.MessageID, ContentType: msg.ContentType, Properties: msg.Properties}
	if msg.Body != nil {
		b := base64.StdEncoding.EncodeToString(msg.Body)
		v.Body = &b
	}
	return v
}

func (v messageView) message() (*envelope.Message, error) {
	msg := &envelope.Message{MessageID: v.MessageID, ContentType: v.ContentType, Properties: v.Properties}
	if v.Body != nil {
		b, err := base64.StdEncoding.DecodeString(*v.Body)
		if err != nil {
			return nil, fmt.Errorf("body is not base64: %w", err)
		}
		msg.Body = b
	}
	return msg, nil
}

type codecView struct {
	Name            string `json:"name"                       yaml:"name"`
	ContentType     string `json:"content_type"               yaml:"content_type"`
	ContentEncoding string `json:"content_encoding,omitempty" yaml:"content_encoding,omitempty"`
	Default         bool   `json:"default,omitempty"          yaml:"default,omitempty"`
}

func newCodecsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codecs",
		Short: "List the available codecs and registered deserializers",
		Args:  cobra.NoArgs,
		RunE:  runCodecs,
	}
	cmd.Flags().StringP("output", "o", outputYAML, "output format (json, yaml)")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON payload into a message envelope",
		Args:  cobra.NoArgs,
		RunE:  runEncode,
	}
	cmd.Flags().StringP("output", "o", outputYAML, "output format (json, yaml)")
	cmd.Flags().String("codec", "", "codec name, the configured default when empty")
	cmd.Flags().String("type", "", "declared payload type written to MessageType")
	cmd.Flags().StringP("input", "i", "-", "payload file, - for stdin")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a message envelope (JSON or YAML) back into its payload",
		Args:  cobra.NoArgs,
		RunE:  runDecode,
	}
	cmd.Flags().StringP("output", "o", outputYAML, "output format (json, yaml)")
	cmd.Flags().StringP("input", "i", "-", "envelope file, - for stdin")
	return cmd
}

// cliCodecs builds the configured codecs for one-shot commands. Codec events
// go to stderr when tracing is on; metrics are not collected.
func cliCodecs(cmd *cobra.Command) (*codecSet, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)
	traceCfg := *cfg
	traceCfg.Metrics.Enabled = false

	return buildCodecs(cfg.Codec, buildTracer(&traceCfg, logger.Logger))
}

func runCodecs(cmd *cobra.Command, _ []string) error {
	set, err := cliCodecs(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(set.byName))
	for n := range set.byName {
		names = append(names, n)
	}
	sort.Strings(names)

	views := make([]codecView, 0, len(names))
	for _, n := range names {
		d := codec.DescriptorOf(set.byName[n]).Key()
		views = append(views, codecView{
			Name:            n,
			ContentType:     d.ContentType,
			ContentEncoding: d.ContentEncoding,
			Default:         n == set.defaultName,
		})
	}

	deserializers := make([]string, 0)
	for _, d := range codec.Descriptors(set.reader.Registry()) {
		deserializers = append(deserializers, d.String())
	}

	out := map[string]any{"codecs": views, "deserializers": deserializers}
	return writeOutput(cmd, out)
}

func runEncode(cmd *cobra.Command, _ []string) error {
	set, err := cliCodecs(cmd)
	if err != nil {
		return err
	}

	serializer := set.writer.DefaultSerializer()
	if name, _ := cmd.Flags().GetString("codec"); strings.TrimSpace(name) != "" {
		c, ok := set.byName[codec.NormalizeToken(name)]
		if !ok {
			return fmt.Errorf("unknown codec %q", name)
		}
		serializer = c
	}

	data, err := readInput(cmd)
	if err != nil {
		return err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	payload, err := bodyhttp.PayloadFor(serializer, raw)
	if err != nil {
		return err
	}

	msg := envelope.New()
	if mt, _ := cmd.Flags().GetString("type"); strings.TrimSpace(mt) != "" {
		msg.Properties[envelope.PropMessageType] = strings.TrimSpace(mt)
	}

	if err := set.writer.WriteBodyWith(msg, payload, serializer); err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	return writeOutput(cmd, viewOf(msg))
}

func runDecode(cmd *cobra.Command, _ []string) error {
	set, err := cliCodecs(cmd)
	if err != nil {
		return err
	}

	data, err := readInput(cmd)
	if err != nil {
		return err
	}

	// YAML accepts JSON input too
	var view messageView
	if err := yaml.Unmarshal(data, &view); err != nil {
		return fmt.Errorf("envelope is not valid JSON or YAML: %w", err)
	}
	msg, err := view.message()
	if err != nil {
		return err
	}

	v, err := set.reader.ReadBody(msg, bodyhttp.TargetFor(msg.ContentType))
	if err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}

	return writeOutput(cmd, bodyhttp.Plain(v))
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("input")
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json, yaml)", format)
	}
}
