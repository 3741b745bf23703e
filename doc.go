// Package appsettings declares, validates, and resolves application
// configuration.
//
// A schema groups setting descriptors under a common prefix:
//
//	schema := appsettings.NewBuilder().
//		Prefix("app_").
//		Declare("host", setting.String(setting.WithDefault("localhost"))).
//		Declare("port", setting.PositiveInt(setting.Required())).
//		Declare("timeout", setting.Duration(setting.WithDefault(30*time.Second))).
//		MustBuild()
//
// Check runs every setting's validators against an ambient environment and
// reports all failures at once, which is how deployments fail fast on a bad
// configuration:
//
//	if err := schema.Check(env); err != nil {
//		log.Fatal(err)
//	}
//
// Resolve returns a cached view over the environment. Values are computed
// on first access (default fallback, environment-variable decoding,
// transform) and memoized until a change notification invalidates the cache:
//
//	cfg := schema.Resolve(env, appsettings.WithChangeNotifier(notifier))
//	port, err := cfg.Int("port")
package appsettings
