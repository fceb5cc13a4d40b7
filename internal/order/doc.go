// Package order assigns deterministic (pageId, pos) coordinates to the
// icons of a layout model.
//
// Sorting is a pure in-memory pass: icons and folder mirrors are stable
// sorted with the comparators from package compare, then walked once to
// hand out slots. Page icons fill pages in page-list order, ten slots per
// page; folder members are numbered per folder from 0. The folder policy
// decides which of the two groups is touched.
//
// The model is mutated in place. Nothing here touches the store.
package order
