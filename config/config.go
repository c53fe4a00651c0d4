/*
Package config implements a parser for PPPoE Access Concentrator
configuration represented in the TOML format: https://github.com/toml-lang/toml.

Configuration is a single top-level table:

	# interface is the Ethernet interface to bind the discovery socket to.
	interface = "eth0"

	# ac_name is the AC-Name this concentrator advertises in its PADO.
	ac_name = "katalix-pppoe-ac"

	# services lists the service names this concentrator will offer.
	# An empty list means "serve any service name requested".
	services = ["internet", "voip"]

	# retry_timeout_ms tunes how long a client dialer using this package
	# waits for a PADO or PADS before retrying. Unused by the
	# concentrator itself.
	retry_timeout_ms = 3000

	# max_retries tunes how many times a client dialer will retry a PADI
	# or PADR before giving up. Unused by the concentrator itself.
	max_retries = 3
*/
package config

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml"
)

// Config contains Access Concentrator configuration for a PPPoE
// discovery daemon.
type Config struct {
	// The entire tree as a map as parsed from the TOML representation.
	// Apps may access this tree to handle their own config tables.
	Map map[string]interface{}

	// InterfaceName is the Ethernet interface to bind the discovery
	// socket to.
	InterfaceName string
	// ACName is the AC-Name advertised in PADO.
	ACName string
	// Services lists the service names this concentrator will offer.
	// An empty list means any requested service name is accepted.
	Services []string
	// RetryTimeout tunes a client dialer's per-attempt timeout.
	RetryTimeout time.Duration
	// MaxRetries tunes a client dialer's retry count.
	MaxRetries uint32
}

func toString(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("supplied value could not be parsed as a string")
}

func toUint32(v interface{}) (uint32, error) {
	if b, ok := v.(int64); ok {
		if b < 0x0 || b > 0xffffffff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return uint32(b), nil
	} else if b, ok := v.(uint64); ok {
		if b > 0xffffffff {
			return 0, fmt.Errorf("value %x out of range", b)
		}
		return uint32(b), nil
	}
	return 0, fmt.Errorf("unexpected %T value %v", v, v)
}

func toDurationMs(v interface{}) (time.Duration, error) {
	u, err := toUint32(v)
	return time.Duration(u) * time.Millisecond, err
}

// toStringList converts a TOML array into a string slice, checking on
// a value-by-value basis that each element is representable as a
// string since TOML arrays may be mixed type.
func toStringList(v interface{}) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array value")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := toString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func newConfig(tree *toml.Tree) (*Config, error) {
	cfg := &Config{
		Map:          tree.ToMap(),
		MaxRetries:   3,
		RetryTimeout: 3 * time.Second,
	}

	for k, v := range cfg.Map {
		var err error
		switch k {
		case "interface":
			cfg.InterfaceName, err = toString(v)
		case "ac_name":
			cfg.ACName, err = toString(v)
		case "services":
			cfg.Services, err = toStringList(v)
		case "retry_timeout_ms":
			cfg.RetryTimeout, err = toDurationMs(v)
		case "max_retries":
			cfg.MaxRetries, err = toUint32(v)
		default:
			return nil, fmt.Errorf("unrecognised parameter %q", k)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to process %v: %v", k, err)
		}
	}

	if cfg.InterfaceName == "" {
		return nil, fmt.Errorf("configuration must specify 'interface'")
	}
	if cfg.ACName == "" {
		return nil, fmt.Errorf("configuration must specify 'ac_name'")
	}

	return cfg, nil
}

// LoadFile loads configuration from the specified file.
func LoadFile(path string) (*Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %v", err)
	}
	return newConfig(tree)
}

// LoadString loads configuration from the specified string.
func LoadString(content string) (*Config, error) {
	tree, err := toml.Load(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load config string: %v", err)
	}
	return newConfig(tree)
}
