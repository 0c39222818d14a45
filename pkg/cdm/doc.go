// Package cdm provides types, interfaces, and helpers for working with the
// Rubrik CDM REST API.
//
// # Overview
//
// The cdm package defines the domain types (e.g., BootstrapConfig,
// ClusterInfo, VMwareVM, Host) and the interfaces of the capability clients
// (ClusterClient, DataManagementClient, PhysicalClient, CloudClient and
// BootstrapClient). Concrete implementations are constructed by the cdmclient
// package, which wires configuration, environment fallback, transport and
// authentication.
//
// Getting a client
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
//	  cli, err := cdmclient.NewWithToken(ctx, "10.0.0.10", "api-token")
//	  if err != nil { log.Fatal(err) }
//
//	  version, err := cli.Cluster().Version(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = version
//	}
//
// # Bootstrapping a new cluster
//
// A fresh node answers unauthenticated calls only. Build a BootstrapClient
// with just the node address and submit a BootstrapConfig:
//
//	bc, _ := cdmclient.NewBootstrap(ctx, &cdm.Config{NodeIP: "10.0.0.11"})
//	result, err := bc.Setup(ctx, &cdm.BootstrapConfig{
//	  ClusterName:          "prod",
//	  AdminEmail:           "ops@example.com",
//	  AdminPassword:        password,
//	  ManagementGateway:    "10.0.0.1",
//	  ManagementSubnetMask: "255.255.255.0",
//	  NodeConfig:           map[string]string{"RVM000A": "10.0.0.11"},
//	}, true)
//
// While the node refuses connections the submission is retried every 30
// seconds, 12 times in total. With wait set, the bootstrap status is then
// polled every 30 seconds until it leaves IN_PROGRESS. A node that is already
// bootstrapped yields a result with AlreadyBootstrapped set instead of an
// error.
//
// # Errors
//
// Argument problems wrap ErrInvalidParameter. Transport failures and non-2xx
// responses are *APICallError; failures reported by the cluster are
// *ClusterError. Use IsConnectionRefused, IsAlreadyBootstrapped, IsNotFound
// and IsUnauthorized to classify them.
package cdm
