// Package repository provides a generic repository built on Bun for the
// read and insert operations the service layer needs, with transactional
// variants and a scoped transaction helper.
package repository
