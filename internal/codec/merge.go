package codec

import "github.com/MKhiriev/go-pim-sync/models"

// Merge folds the stored state of the same record into a decoded one.
//
// A sender with limited storage announces maxItems on the lists it can only
// partly hold. When the stored list has more values than that limit, the
// received values are kept first and every stored value missing from them is
// appended, so a truncated copy never deletes data the device still holds.
// Lists without a limit replace the stored ones.
func (d *Decoded) Merge(existing *models.Record) {
	if existing == nil || len(d.limits) == 0 {
		return
	}
	rec := &d.Record

	if n, ok := d.limits[listCategories]; ok && len(existing.Categories) > n {
		rec.Categories = mergeStrings(rec.Categories, existing.Categories)
	}

	if n, ok := d.limits[listCustomFields]; ok && len(existing.CustomFields) > n {
		for k, v := range existing.CustomFields {
			if _, present := rec.CustomFields[k]; present {
				continue
			}
			if rec.CustomFields == nil {
				rec.CustomFields = make(map[string]string, len(existing.CustomFields))
			}
			rec.CustomFields[k] = v
		}
	}

	if rec.Contact == nil || existing.Contact == nil {
		return
	}

	if n, ok := d.limits[listPhoneNumbers]; ok && len(existing.Contact.PhoneNumbers) > n {
		seen := make(map[models.PhoneNumber]struct{}, len(rec.Contact.PhoneNumbers))
		for _, number := range rec.Contact.PhoneNumbers {
			seen[number] = struct{}{}
		}
		for _, number := range existing.Contact.PhoneNumbers {
			if _, dup := seen[number]; !dup {
				rec.Contact.PhoneNumbers = append(rec.Contact.PhoneNumbers, number)
				seen[number] = struct{}{}
			}
		}
	}

	if n, ok := d.limits[listEmails]; ok && len(existing.Contact.Emails) > n {
		rec.Contact.Emails = mergeStrings(rec.Contact.Emails, existing.Contact.Emails)
	}
}

func mergeStrings(received, stored []string) []string {
	seen := make(map[string]struct{}, len(received))
	for _, v := range received {
		seen[v] = struct{}{}
	}
	out := received
	for _, v := range stored {
		if _, dup := seen[v]; !dup {
			out = append(out, v)
			seen[v] = struct{}{}
		}
	}
	return out
}
