package config

// envMap returns a LookupFunc backed by m.
func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func fullEnv() map[string]string {
	return map[string]string{
		EnvWalletVersion: "1.2.3",
		EnvKeyWebMain:    "web-main",
		EnvKeyWebTest:    "web-test",
		EnvKeyExtMain:    "ext-main",
		EnvKeyExtTest:    "ext-test",
	}
}
