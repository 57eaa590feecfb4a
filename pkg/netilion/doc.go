/*
Package netilion is a client for the Netilion IoT REST API.

Authentication

Requests are authenticated with a bearer token obtained through the OAuth2
password grant.  The token is fetched on the first request and fetched again
once it has expired; the API does not support refresh tokens.  Every request,
the token exchange included, also carries the client ID in an Api-Key
header.  Requests to URLs outside the configured endpoint are refused before
anything is sent.

Usage

	cfg := netilion.NewConfiguration("https://api.netilion.endress.com",
		clientID, clientSecret, username, password)

	client := netilion.NewClient(cfg)
	asset, err := client.FindAsset("SN-0001")
	if err != nil {
		return err
	}
	if asset == nil {
		// no such asset
	}

Errors

Failures of API calls are *APIError values.  They match ErrAPI and their
own kind with errors.Is:

	if errors.Is(err, netilion.ErrPermissionDenied) {
		...
	}

Reads are classified by the error envelope and the shape of the response
body, whatever the status code.  Writes are classified by the status code.
Attachment downloads carry opaque content, so they are checked by status
code instead of envelope.

Concurrency

A Client and its Session hold the current token and are meant for one caller
at a time.
*/
package netilion
