// Package cdmclient provides the primary entry point for constructing Rubrik
// CDM API clients that implement the cdm.Client and cdm.BootstrapClient
// interfaces.
//
// It layers configuration, environment fallback, HTTP transport and
// authentication on top of the capability interfaces and types defined in the
// cdm package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/cdm-client/pkg/cdm"
//	  "github.com/fivetwenty-io/cdm-client/pkg/cdmclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With an API token:
//	  cli, err := cdmclient.NewWithToken(ctx, "10.0.0.10", "api-token")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or from rubrik_cdm_node_ip, rubrik_cdm_username, rubrik_cdm_password
//	  // and rubrik_cdm_token:
//	  cli, err = cdmclient.NewFromEnv(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with full control over timeouts, retries and logging:
//	  cli, err = cdmclient.New(ctx, &cdm.Config{
//	    NodeIP:        "10.0.0.10",
//	    Username:      "admin",
//	    Password:      "secret",
//	    SkipTLSVerify: true,
//	    RetryMax:      3,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  nodes, err := cli.Cluster().NodeIPs(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = nodes
//	}
//
// Credentials
//
// An API token takes precedence over a username and password; the password is
// then never sent. Missing credentials fail with an error wrapping
// cdm.ErrInvalidParameter.
package cdmclient
