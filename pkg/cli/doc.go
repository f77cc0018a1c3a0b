// Package cli implements the cadmdt command.
//
//	cadmdt                      # same as cadmdt serve
//	cadmdt migrate              # apply embedded goose migrations
//	cadmdt routes -o json       # print the navigation table
//	cadmdt token --user-id 42   # store a new API token
//	cadmdt check -s acme --token cad_... VIEW_CITIZEN VIEW_VEHICLE -m AND
//	cadmdt audit -s acme -n 20  # recent access denials
//
// Configuration comes from CADMDT_* environment variables, see pkg/config.
package cli
