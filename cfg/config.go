// Package cfg defines ramfs's mount-time configuration and binds it to
// command-line flags, following the same pflag/viper split gcsfuse
// uses for its own mount configuration (one struct decoded by
// viper, one function registering the matching pflag.FlagSet).
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting the ramfs command accepts, independent of
// the positional mountpoint argument. It is populated by viper after
// BindFlags registers the flags that feed it, so a config file (if any)
// and the command line agree on the same key names.
type Config struct {
	AppName string `mapstructure:"app-name"`

	Debug DebugConfig `mapstructure:"debug"`

	FileSystem FileSystemConfig `mapstructure:"file-system"`

	Mount MountConfig `mapstructure:"mount"`
}

// DebugConfig controls diagnostic verbosity. None of it changes ramfs
// core semantics — spec.md's core has no debug mode of its own.
type DebugConfig struct {
	// Fuse enables go-fuse's own request-tracing log output.
	Fuse bool `mapstructure:"fuse"`

	// LogLevel sets the slog level name ("debug", "info", "warn",
	// "error") for the bridge and core's structured logging.
	LogLevel string `mapstructure:"log-level"`

	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string `mapstructure:"log-format"`
}

// FileSystemConfig seeds the root inode's metadata at mount time. ramfs
// never checks permission bits (spec.md §1 Non-goals) but still reports
// them to the kernel, so a caller-chosen default matters for tools like
// `ls` that render them.
type FileSystemConfig struct {
	// RootMode is the permission-bits portion of the root inode's mode,
	// e.g. 0755. The directory kind bit is added by the core itself.
	RootMode uint32 `mapstructure:"root-mode"`

	// Uid and Gid seed the root inode's owner/group. -1 means "use the
	// calling process's own uid/gid", resolved at mount time.
	Uid int `mapstructure:"uid"`
	Gid int `mapstructure:"gid"`
}

// MountConfig carries go-fuse MountOptions-shaped settings.
type MountConfig struct {
	// AllowOther maps to fuse.MountOptions.AllowOther: permit users
	// other than the mounting user to access the filesystem.
	AllowOther bool `mapstructure:"allow-other"`

	// SingleThreaded maps to fuse.MountOptions.SingleThreaded, disabling
	// concurrent request processing. Irrelevant to the core itself,
	// which already assumes serialized access (spec.md §5), but a real
	// knob a user mounting this would expect given the original CLI's
	// "-s" flag.
	SingleThreaded bool `mapstructure:"single-threaded"`

	// EntryTimeoutSeconds and AttrTimeoutSeconds control how long the
	// kernel caches Lookup/Getattr results before re-querying the
	// bridge. Since ramfs is entirely in-memory and single-threaded,
	// stale caching would hide the effect of a concurrent-from-the-
	// kernel's-view mutation; ramfs defaults both to zero (no caching)
	// unless the operator opts in.
	EntryTimeoutSeconds float64 `mapstructure:"entry-timeout-seconds"`
	AttrTimeoutSeconds  float64 `mapstructure:"attr-timeout-seconds"`
}

// BindFlags registers every Config field as a flag on flagSet and binds
// it to the matching viper key, so viper.Unmarshal(&Config{}) after
// cobra parses flags produces a fully populated Config.
func BindFlags(flagSet *pflag.FlagSet) error {
	bind := func(viperKey, flagName string) error {
		return viper.BindPFlag(viperKey, flagSet.Lookup(flagName))
	}

	flagSet.String("app-name", "ramfs", "Name reported for this mount, used only in logs.")
	if err := bind("app-name", "app-name"); err != nil {
		return err
	}

	flagSet.Bool("debug-fuse", false, "Print go-fuse's own per-request trace log.")
	if err := bind("debug.fuse", "debug-fuse"); err != nil {
		return err
	}

	flagSet.String("log-level", "info", "Log level: debug, info, warn, or error.")
	if err := bind("debug.log-level", "log-level"); err != nil {
		return err
	}

	flagSet.String("log-format", "text", "Log output format: text or json.")
	if err := bind("debug.log-format", "log-format"); err != nil {
		return err
	}

	flagSet.Uint32("root-mode", 0755, "Permission bits for the root directory, in octal-equivalent decimal (e.g. 493 for 0755).")
	if err := bind("file-system.root-mode", "root-mode"); err != nil {
		return err
	}

	flagSet.Int("uid", -1, "Owner uid for the root inode; -1 uses the calling process's uid.")
	if err := bind("file-system.uid", "uid"); err != nil {
		return err
	}

	flagSet.Int("gid", -1, "Owner gid for the root inode; -1 uses the calling process's gid.")
	if err := bind("file-system.gid", "gid"); err != nil {
		return err
	}

	flagSet.Bool("allow-other", false, "Mount with -o allow_other, permitting access from users other than the mounting user.")
	if err := bind("mount.allow-other", "allow-other"); err != nil {
		return err
	}

	flagSet.Bool("single-threaded", false, "Disable concurrent FUSE request processing.")
	if err := bind("mount.single-threaded", "single-threaded"); err != nil {
		return err
	}

	flagSet.Float64("entry-timeout", 0, "Kernel dentry cache timeout in seconds.")
	if err := bind("mount.entry-timeout-seconds", "entry-timeout"); err != nil {
		return err
	}

	flagSet.Float64("attr-timeout", 0, "Kernel attribute cache timeout in seconds.")
	if err := bind("mount.attr-timeout-seconds", "attr-timeout"); err != nil {
		return err
	}

	return nil
}
