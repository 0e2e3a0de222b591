// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [AnalogReader]: Reads one voltage sample from the analog front end
//   - [StimulusDriver]: Drives the step input line high or low
//   - [Clock]: Supplies wall time and periodic tickers
//   - [RunSender]: Ships a frozen run to the ingest service
//   - [RunExporter]: Exports a frozen run to local storage
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (ADC hardware, simulated plant, file system, HTTP).
//
// This separation enables:
//   - Testing the recorder with a fake clock and fake analog source
//   - Swapping hardware without changing acquisition logic
//   - Clear boundaries and dependency direction
package ports
