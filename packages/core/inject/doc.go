// Package inject substitutes :name placeholders in URL and destination templates.
//
// It provides functionality for:
//   - Replacing :name tokens with values from a parameter set
//   - Listing the tokens a template declares
//   - Reporting tokens a parameter set cannot satisfy
//
// Unresolved tokens are left in place as literals and reported through an
// optional WarnFunc, so substitution never drops data.
package inject
