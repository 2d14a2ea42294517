package agent

import (
	"fmt"
	"reflect"
	"sync"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	// QLearning learns online from a table filled with a constant
	QLearning Type = "QLearnAgent2"

	// PretrainedQLearning learns online from a saved table
	PretrainedQLearning Type = "QLearnAgent"

	// Random moves uniformly at random and never learns
	Random Type = "RandAgent"
)

// Registered types with the package. Once a Type has been registered,
// a TypedConfig with that type can be deserialized.
//
// No Type's are registered with this package upon initialization. Each
// agent package registers its own Type to avoid circular imports.
var (
	registeredTypes = make(map[Type]reflect.Type)
	registerMu      sync.RWMutex
)

// Register registers an agent's Type with a concrete Config type so
// that TypedConfigs of type agentType deserialize into that type.
func Register(agentType Type, config Config) {
	registerMu.Lock()
	defer registerMu.Unlock()
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// NewConfig returns a zero Config of the concrete type registered for
// agentType
func NewConfig(agentType Type) (Config, error) {
	registerMu.RLock()
	ty, found := registeredTypes[agentType]
	registerMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("newConfig: unregistered agent type %q",
			agentType)
	}

	return reflect.New(ty).Elem().Interface().(Config), nil
}

// Registered returns whether agentType has been registered
func Registered(agentType Type) bool {
	registerMu.RLock()
	defer registerMu.RUnlock()
	_, ok := registeredTypes[agentType]
	return ok
}
