package main

import (
	"log/slog"
	"strings"
	"sync"

	"veil/internal/config"
	"veil/internal/history"
	"veil/internal/logging"
	"veil/internal/notifications"
	"veil/internal/stego"
	"veil/internal/tracker"
)

type commandContext struct {
	configFlag  *string
	serviceFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, serviceFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		serviceFlag: serviceFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.serviceFlag != nil && strings.TrimSpace(*c.serviceFlag) != "" {
			cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(*c.serviceFlag), "/")
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) newClient() (*stego.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return stego.NewClient(cfg.Service.BaseURL,
		stego.WithTimeout(cfg.Service.Timeout()),
		stego.WithLogger(c.ensureLogger()),
	), nil
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg)
}

func (c *commandContext) newTracker() (*tracker.Tracker, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.newClient()
	if err != nil {
		return nil, err
	}
	return tracker.New(client, cfg.Tracker,
		tracker.WithNotifier(notifications.NewFromConfig(cfg)),
		tracker.WithLogger(c.ensureLogger()),
	), nil
}
