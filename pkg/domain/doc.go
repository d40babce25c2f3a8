// Package domain contains the data model of a fronting scan: candidates, the
// per-candidate outcome categories, the outcome record itself and the
// aggregate result of a scan run.
package domain
