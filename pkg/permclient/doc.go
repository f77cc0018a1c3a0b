// Package permclient is the consumer side of the check-permission endpoints: a
// single-check Gate and a bulk Provider for terminals and services that show or hide
// content per user. Both fail closed.
//
//	client := permclient.NewClient("https://cad.example.com", token)
//	gate, _ := permclient.NewGate(client, "acme", []permissions.Permission{permissions.ViewWarrant}, permissions.ModeOr,
//		permclient.WithRedirect("/servers/acme/dashboard"))
//	if out := gate.Check(ctx); out.Redirect != "" { ... }
//
//	provider := permclient.NewProvider(client, "acme", []permissions.Permission{permissions.CreateFine, permissions.DeleteFine})
//	provider.Load(ctx)
//	if provider.Has(permissions.DeleteFine) { ... }
package permclient
