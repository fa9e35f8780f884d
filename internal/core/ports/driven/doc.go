// Package driven defines the outbound ports of the harvest core:
// interfaces the core calls and adapters implement. The core depends on
// these interfaces, never on concrete adapters.
package driven
