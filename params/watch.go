package params

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/anyswap/soroban-counter/log"
)

// WatchConfig reload the Fee and Poll sections when the config file
// changes. onChange is called with the new config after it is set.
// Other sections need a restart. The watch stops when stop is closed.
func WatchConfig(configFile string, stop <-chan struct{}, onChange func(*CounterConfig)) error {
	watch, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("fsnotify.NewWatcher failed", "err", err)
		return err
	}
	// watch the dir, editors replace the file on save
	err = watch.Add(filepath.Dir(configFile))
	if err != nil {
		_ = watch.Close()
		log.Error("watch.Add config dir failed", "err", err)
		return err
	}
	go startWatcher(watch, configFile, stop, onChange)
	return nil
}

func startWatcher(watch *fsnotify.Watcher, configFile string, stop <-chan struct{}, onChange func(*CounterConfig)) {
	log.Info("start fsnotify watch", "configFile", configFile)
	defer func() {
		log.Info("stop fsnotify watch", "configFile", configFile)
		_ = watch.Close()
	}()

	target := filepath.Clean(configFile)
	ops := []fsnotify.Op{
		fsnotify.Create,
		fsnotify.Write,
	}

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-watch.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			log.Trace("fsnotify watch event", "event", ev)
			for _, op := range ops {
				if ev.Op&op == op {
					if config, err := reloadConfig(configFile); err != nil {
						log.Info("reload config error", "configFile", configFile, "err", err)
					} else if onChange != nil {
						onChange(config)
					}
					break
				}
			}
		case werr, ok := <-watch.Errors:
			if !ok {
				return
			}
			log.Warn("fsnotify watch error", "err", werr)
		}
	}
}

func reloadConfig(configFile string) (*CounterConfig, error) {
	newConfig, err := LoadConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	old := GetConfig()
	if old == nil {
		SetConfig(newConfig)
		return newConfig, nil
	}
	merged := *old
	merged.Fee = newConfig.Fee
	merged.Poll = newConfig.Poll
	SetConfig(&merged)
	log.Info("reload config success", "configFile", configFile, "fee", *merged.Fee, "poll", *merged.Poll)
	return &merged, nil
}
