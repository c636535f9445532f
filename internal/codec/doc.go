// Package codec converts PIM records between their wire text form and
// [models.Record].
//
// A wire record is a small XML document whose root element names the record
// kind (Contact, Task or Appointment). Category labels on the wire are
// resolved to local category ids through a [CategoryResolver]; labels with
// no local category are collected in the transaction's
// [models.UnresolvedCategorySet] and stored as placeholders until the
// transaction commits.
//
// Multi-valued fields may carry a maxItems attribute announcing that the
// sender truncated the list. [Decoded.Merge] keeps the existing values the
// sender could not hold.
package codec
