// Package mqtt defines the publish capability the simulation core consumes.
// The Eclipse Paho implementation and a mock publisher used in tests live in
// infra/mqtt; the core only ever sees this interface.
package mqtt
