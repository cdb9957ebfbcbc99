package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Unknown extensions
// are read as TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Load reads a configuration file. Fields the file does not set keep their
// [DefaultDef] values.
func Load(path string) (Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Def{}, errors.Wrap(errors.ErrCodeNotFound, err, "config file not found: %s", path)
		}
		return Def{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// Parse decodes data on top of [DefaultDef].
func Parse(data []byte, format Format) (Def, error) {
	def := DefaultDef()
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &def)
	default:
		err = toml.Unmarshal(data, &def)
	}
	if err != nil {
		return Def{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s config", format)
	}
	return def, nil
}

// Encode writes d in the given format.
func Encode(w io.Writer, d Def, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
}
