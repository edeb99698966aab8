package server

import (
	"bufio"
	"strconv"
	"strings"
)

// HostMetrics is what the aggregator extracts from one backend's status
// text for a single host.
type HostMetrics struct {
	Up       bool
	WOLCount uint64
}

// ParseStatus scans Prometheus exposition text for the rewol_host_up and
// rewol_host_wol families. Comments and unknown families are ignored; a
// malformed line in a known family is skipped and reported back so the
// caller can log it, but never fails the whole parse.
func ParseStatus(text string) (map[string]HostMetrics, []string) {
	result := make(map[string]HostMetrics)
	var malformed []string

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "rewol_host_up{"):
			name, value, ok := parseLine(line, "rewol_host_up")
			if !ok || (value != 0 && value != 1) {
				malformed = append(malformed, line)
				continue
			}
			m := result[name]
			m.Up = value == 1
			result[name] = m
		case strings.HasPrefix(line, "rewol_host_wol{"):
			name, value, ok := parseLine(line, "rewol_host_wol")
			if !ok || value < 0 {
				malformed = append(malformed, line)
				continue
			}
			m := result[name]
			m.WOLCount = uint64(value)
			result[name] = m
		}
	}

	return result, malformed
}

// parseLine splits `family{host="name"} value` into its host label and
// numeric value.
func parseLine(line, family string) (string, float64, bool) {
	rest := strings.TrimPrefix(line, family)
	if !strings.HasPrefix(rest, `{host="`) {
		return "", 0, false
	}
	rest = strings.TrimPrefix(rest, `{host="`)

	end := strings.Index(rest, `"}`)
	if end < 0 {
		return "", 0, false
	}
	name := rest[:end]
	if name == "" {
		return "", 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(rest[end+2:]), 64)
	if err != nil {
		return "", 0, false
	}
	return name, value, true
}
