package build

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var languageTargets = map[string]api.Target{
	"esnext": api.ESNext,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
}

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"deno":    api.EngineDeno,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"hermes":  api.EngineHermes,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"rhino":   api.EngineRhino,
	"safari":  api.EngineSafari,
}

var enginePattern = regexp.MustCompile(`^([a-z]+)(\d+(?:\.\d+){0,2})$`)

// ParseTargets converts target strings such as "es2019", "chrome87" or
// "safari13.1" into esbuild's language target and engine list. Language
// targets other than the last one given are ignored.
func ParseTargets(values []string) (api.Target, []api.Engine, error) {
	target := api.DefaultTarget
	var engines []api.Engine

	for _, raw := range values {
		value := strings.ToLower(strings.TrimSpace(raw))
		if t, ok := languageTargets[value]; ok {
			target = t
			continue
		}

		m := enginePattern.FindStringSubmatch(value)
		if m == nil {
			return target, nil, fmt.Errorf("invalid build target %q", raw)
		}
		name, ok := engineNames[m[1]]
		if !ok {
			return target, nil, fmt.Errorf("unknown engine %q in build target %q", m[1], raw)
		}
		engines = append(engines, api.Engine{Name: name, Version: m[2]})
	}

	return target, engines, nil
}
