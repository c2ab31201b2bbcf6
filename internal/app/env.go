package app

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadEnvFiles reads dotenv files of SENTLEN_* assignments into the process
// environment so ApplyEnvToConfig can see them. Later files override earlier
// ones, but a variable already set to a non-empty value in the process
// environment always wins. Keys without the SENTLEN_ prefix are ignored.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	vals := map[string]string{}
	var order []string
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		err := parseEnvFile(p, func(key, val string) {
			if _, ok := vals[key]; !ok {
				order = append(order, key)
			}
			vals[key] = val
		})
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
	}
	for _, key := range order {
		if os.Getenv(key) != "" {
			log.Debug().Str("var", key).Msg("keeping value from process environment")
			continue
		}
		if err := os.Setenv(key, vals[key]); err != nil {
			return fmt.Errorf("setenv %s: %w", key, err)
		}
	}
	return nil
}

func parseEnvFile(path string, set func(key, val string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			log.Warn().Str("file", path).Int("line", n).Msg("ignoring malformed env line")
			continue
		}
		key := strings.TrimSpace(line[:eq])
		if !strings.HasPrefix(key, EnvPrefix) {
			log.Debug().Str("file", path).Str("var", key).Msg("ignoring variable without prefix")
			continue
		}
		set(key, envValue(strings.TrimSpace(line[eq+1:])))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// envValue unquotes a quoted value or drops a trailing " #" comment from a
// bare one.
func envValue(v string) string {
	if len(v) >= 2 {
		if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
			return v[1 : len(v)-1]
		}
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
