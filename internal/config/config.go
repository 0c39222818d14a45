// Package config resolves client configuration, filling connection settings
// the caller left empty from the rubrik_cdm_* environment variables.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

const (
	keyNodeIP   = "node_ip"
	keyUsername = "username"
	keyPassword = "password"
	keyToken    = "token"
)

// newEnv returns a viper instance reading the connection variables. Both the
// lower-case names and their upper-case forms are accepted, lower-case first.
func newEnv() *viper.Viper {
	env := viper.New()

	for key, name := range map[string]string{
		keyNodeIP:   constants.EnvNodeIP,
		keyUsername: constants.EnvUsername,
		keyPassword: constants.EnvPassword,
		keyToken:    constants.EnvToken,
	} {
		_ = env.BindEnv(key, name, strings.ToUpper(name))
	}

	return env
}

// FromEnvironment builds a config from the environment only.
func FromEnvironment() *cdm.Config {
	env := newEnv()

	return &cdm.Config{
		NodeIP:   env.GetString(keyNodeIP),
		Username: env.GetString(keyUsername),
		Password: env.GetString(keyPassword),
		APIToken: env.GetString(keyToken),
	}
}

// Resolve returns a copy of cfg with empty connection fields taken from the
// environment, unless cfg.DisableEnvFallback is set. Explicit values always
// win over the environment.
func Resolve(cfg *cdm.Config) (*cdm.Config, error) {
	if cfg == nil {
		return nil, cdm.ErrConfigRequired
	}

	resolved := *cfg
	if cfg.DisableEnvFallback {
		return &resolved, nil
	}

	env := FromEnvironment()

	fill(&resolved.NodeIP, env.NodeIP)

	// An explicit token or username/password pair is a complete credential set
	// and must not be mixed with values from the environment.
	if resolved.APIToken == "" && (resolved.Username == "" || resolved.Password == "") {
		fill(&resolved.Username, env.Username)
		fill(&resolved.Password, env.Password)
		fill(&resolved.APIToken, env.APIToken)
	}

	return &resolved, nil
}

// ResolveNode is Resolve for clients that only need the node address.
func ResolveNode(cfg *cdm.Config) (*cdm.Config, error) {
	resolved, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	if resolved.NodeIP == "" {
		return nil, cdm.ErrNodeIPRequired
	}

	return resolved, nil
}

func fill(target *string, fallback string) {
	if *target == "" {
		*target = strings.TrimSpace(fallback)
	}
}
