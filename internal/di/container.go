// Package di wires the application modules together with explicit
// lifecycle management.
package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"tripack/internal/auth"
	authconfig "tripack/internal/auth/config"
	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips"
	tripsconfig "tripack/internal/trips/config"
)

// Container represents a dependency injection container with proper lifecycle management
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)
	// Module instances
	AuthModule  *auth.AuthModule
	TripsModule *trips.TripsModule
	// Infrastructure
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	EventBus    eventbus.EventBusInterface
	// Configuration
	AuthConfig  *authconfig.Config
	TripsConfig *tripsconfig.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
	}
}

// InitializeAuth initializes the authentication module
func (c *Container) InitializeAuth(mongoDB *mongo.Database, cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MongoDB = mongoDB
	c.AuthConfig = cfg

	authModule, err := auth.NewAuthModule(mongoDB, cfg)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// InitializeTrips initializes the trips module and its event handlers. The
// auth module must already be initialized since the trips routes sit behind
// its middleware.
func (c *Container) InitializeTrips(ctx context.Context, redisClient *redis.Client, cfg *tripsconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before trips module")
	}
	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before trips module")
	}

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}
	if c.EventBus == nil {
		c.EventBus = eventbus.NewEventBusWithConfig(c.Logger, eventbus.BusConfig{AsyncProcessing: true})
	}

	c.RedisClient = redisClient
	c.TripsConfig = cfg

	tripsModule, err := trips.NewTripsModule(ctx, c.MongoDB, redisClient, c.EventBus, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create trips module: %w", err)
	}

	c.TripsModule = tripsModule
	return nil
}

// Register registers a service instance
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	if factory, exists := c.factories[serviceType]; exists {
		c.mu.RUnlock()

		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}

		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()

		return service, nil
	}

	c.mu.RUnlock()
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf(zero)

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetTripsModule returns the trips module instance
func (c *Container) GetTripsModule() *trips.TripsModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TripsModule
}

// HealthCheck pings the backing stores
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}

	return nil
}

// Cleanup shuts down registered services in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.TripsModule = nil
	c.AuthModule = nil

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		c.RedisClient = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		if c.Logger != nil {
			c.Logger.Warnf("Cleanup errors occurred: %v", err)
		}
	}
	return nil
}
