package paths

// ResolveDataDir determines the data directory using precedence:
// 1. flagOverride (--data-dir flag)
// 2. data_dir from the config file
// 3. DefaultDataDir
func ResolveDataDir(flagOverride, configured string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if configured != "" {
		return configured
	}
	return DefaultDataDir()
}
