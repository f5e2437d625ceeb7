package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/receipt/pkg/adapters/fs"
	"github.com/aretw0/receipt/pkg/core"
)

// Init opens the receipt log described by uri and opts and makes sure it
// exists. The uri is adapter-specific (a directory for "fs").
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(uri, o)
}

func initRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	var err error

	switch o.adapter {
	case "fs":
		repo, err = initFS(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS builds the filesystem adapter, applying dev safety to the path.
func initFS(path string, o *options) (*fs.Repository, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	fileName, _ := o.config["file_name"].(string)
	lockTimeout, _ := o.config["lock_timeout"].(time.Duration)
	staleLockAfter, _ := o.config["stale_lock_after"].(time.Duration)
	eventBuffer, _ := o.config["event_buffer"].(int)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only access cannot damage anything.
	bypassSafety := isReadOnly || !devSafety
	devRun := IsDevRun()
	useTemp := tempDir || (devRun && !bypassSafety)
	resolvedPath := ResolveDataPath(path, useTemp)

	if o.logger != nil {
		switch {
		case useTemp && resolvedPath != path:
			o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", path, "resolved_path", resolvedPath)
		case devRun && bypassSafety && !isReadOnly:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
		case devRun && isReadOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolvedPath)
		}
	}

	return fs.NewRepository(fs.Config{
		Path:           resolvedPath,
		FileName:       fileName,
		MustExist:      mustExist || (!autoInit && !useTemp),
		ReadOnly:       isReadOnly,
		Logger:         o.logger,
		LockTimeout:    lockTimeout,
		StaleLockAfter: staleLockAfter,
		EventBuffer:    eventBuffer,
		ErrorHandler:   errorHandler,
	}), nil
}
