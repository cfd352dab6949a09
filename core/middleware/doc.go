// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation for every route except the skipped prefixes.
//   - rayid: assigns each request a ray id, stores it in the fiber locals and
//     echoes it in the X-Ray-ID response header for log correlation.
package middleware
