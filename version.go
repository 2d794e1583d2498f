package wizard

// Version is the release of the wizard, overridden at build time with
// -ldflags "-X github.com/aibee/wizard.Version=...".
var Version = "0.1.0-dev"
