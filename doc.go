// Package qtcompat selects exactly one Qt binding provider per process and
// normalizes the API differences between binding generations behind a small
// compatibility facade.
//
// The selection logic is as follows:
//   - if any of PyQt6, PySide6, PyQt5, or PySide2 is already loaded in the
//     process (checked in that order), use it;
//   - otherwise, if the QT_API environment variable is set and the configured
//     rendering backend is Qt5-compatible, use it to choose between the two
//     legacy bindings (the variable predates the modern generation and can
//     never select a modern binding);
//   - otherwise, try each candidate in order and use the first that loads.
//
// Binding providers register themselves with Register, usually from an init
// function. Init resolves once and installs the process-wide Context; Resolve
// is the injectable form used for testing and embedding.
package qtcompat
