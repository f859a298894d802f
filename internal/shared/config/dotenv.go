package config

import (
	"bufio"
	"log"
	"os"
	"strings"
)

// loadEnvFiles reads KEY=VALUE lines from local env files for development. Missing files
// are skipped and variables already set in the process environment are left alone, so
// a real API_KEY exported in the shell always wins over a stale .env.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		n := 0
		for scanner.Scan() {
			key, val, ok := parseEnvLine(scanner.Text())
			if !ok {
				continue
			}
			if existing, set := os.LookupEnv(key); set && existing != "" {
				continue
			}
			os.Setenv(key, val)
			n++
		}
		if err := scanner.Err(); err != nil {
			log.Printf("config env file %s: %v", path, err)
		}
		_ = f.Close()
		if n > 0 {
			log.Printf("config: loaded %d variable(s) from %s", n, path)
		}
	}
}

func parseEnvLine(raw string) (key, val string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, val, ok = strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	val = strings.TrimSpace(val)
	if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
		val = val[1 : len(val)-1]
	}
	return key, val, true
}
