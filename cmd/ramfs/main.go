// Command ramfs mounts an in-memory, POSIX-like filesystem at a given
// mountpoint using FUSE. It is the process entry point spec.md §1 places
// out of scope for the core: flag/config parsing, the mount call, and
// graceful unmount-on-signal all live here, wrapping the ramfs and
// bridge packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/artemgoldenberg/ramfs-go/bridge"
	"github.com/artemgoldenberg/ramfs-go/cfg"
	"github.com/artemgoldenberg/ramfs-go/ramfs"
)

var (
	cfgFile      string
	bindErr      error
	mountConfig  cfg.Config
	unmarshalErr error
)

var rootCmd = &cobra.Command{
	Use:   "ramfs MOUNTPOINT",
	Short: "Mount an in-memory POSIX-like filesystem over FUSE",
	Long: `ramfs serves an in-memory inode graph through a FUSE mount. Every
directory, file, and hard link lives in process memory; nothing is
persisted, and the mount's entire contents disappear once it is
unmounted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		return runMount(cmd.Context(), args[0])
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file overriding flag defaults.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			unmarshalErr = fmt.Errorf("reading config file: %w", err)
			return
		}
	}
	unmarshalErr = viper.Unmarshal(&mountConfig)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runMount builds a fresh ramfs.Filesystem, seeds its root metadata from
// mountConfig, mounts it through the bridge package, and blocks until
// either the FUSE server exits on its own or a termination signal
// arrives — at which point it unmounts and tears the whole inode graph
// down before returning.
func runMount(ctx context.Context, mountPoint string) error {
	level := parseLevel(mountConfig.Debug.LogLevel)
	logger := slog.New(newLogHandler(mountConfig.Debug.LogFormat, level))
	slog.SetDefault(logger)

	sessionID := uuid.New().String()
	logger.Info("mounting ramfs",
		slog.String("app_name", mountConfig.AppName),
		slog.String("session_id", sessionID),
		slog.String("mountpoint", mountPoint))

	fsys := ramfs.NewFilesystem()
	seedRoot(fsys.Root, &mountConfig.FileSystem)

	opts := &fs.Options{}
	opts.AllowOther = mountConfig.Mount.AllowOther
	opts.SingleThreaded = mountConfig.Mount.SingleThreaded
	opts.Debug = mountConfig.Debug.Fuse
	if mountConfig.Mount.EntryTimeoutSeconds > 0 {
		d := secondsToDuration(mountConfig.Mount.EntryTimeoutSeconds)
		opts.EntryTimeout = &d
	}
	if mountConfig.Mount.AttrTimeoutSeconds > 0 {
		d := secondsToDuration(mountConfig.Mount.AttrTimeoutSeconds)
		opts.AttrTimeout = &d
	}

	server, err := fs.Mount(mountPoint, bridge.NewRoot(fsys), opts)
	if err != nil {
		return fmt.Errorf("mounting at %s: %w", mountPoint, err)
	}
	logger.Info("mounted", slog.String("session_id", sessionID))

	group, groupCtx := errgroup.WithContext(ctx)
	serverDone := make(chan struct{})
	group.Go(func() error {
		server.Wait()
		close(serverDone)
		return nil
	})
	group.Go(func() error {
		sigCtx, stop := signal.NotifyContext(groupCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case <-serverDone:
			return nil
		case <-sigCtx.Done():
		}
		logger.Info("unmounting on signal", slog.String("session_id", sessionID))
		return server.Unmount()
	})

	err = group.Wait()
	fsys.Teardown()
	logger.Info("teardown complete", slog.String("session_id", sessionID))
	return err
}

// seedRoot applies FileSystemConfig's overrides to the root inode
// NewFilesystem already allocated: the directory kind bit stays as
// NewFilesystem set it, but the permission bits and owner/group are
// replaced with the operator's chosen values (uid/gid -1 means "use the
// process's own", resolved here rather than in cfg since only main
// knows the running process's identity).
func seedRoot(root *ramfs.Inode, fscfg *cfg.FileSystemConfig) {
	root.Mode = syscall.S_IFDIR | fscfg.RootMode
	if fscfg.Uid >= 0 {
		root.Owner = uint32(fscfg.Uid)
	} else {
		root.Owner = uint32(unix.Getuid())
	}
	if fscfg.Gid >= 0 {
		root.Group = uint32(fscfg.Gid)
	} else {
		root.Group = uint32(unix.Getgid())
	}
}

// newLogHandler picks a text or JSON slog.Handler based on format; an
// unrecognized format falls back to text, matching gcsfuse's own
// "unknown format defaults to text" log-setup convention.
func newLogHandler(format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
