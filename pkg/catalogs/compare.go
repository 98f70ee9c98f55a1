package catalogs

// RemoteSetCount is the number of cards a remote source lists for a set.
type RemoteSetCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// SetCountDiff compares remote and bundled card counts of one set.
type SetCountDiff struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Remote     int    `json:"remote"`
	Local      int    `json:"local"`
	Difference int    `json:"difference"` // Remote - Local
	New        bool   `json:"new"`        // Not in the bundled catalog at all
}

// UpdateReport is the outcome of CompareCounts.
type UpdateReport struct {
	Sets        []SetCountDiff `json:"sets"`
	NewSets     []SetCountDiff `json:"new_sets"`
	Updated     []SetCountDiff `json:"updated_sets"` // Remote lists more cards than bundled
	RemoteTotal int            `json:"remote_total"`
	LocalTotal  int            `json:"local_total"`
}

// HasUpdates reports whether the bundle is behind the remote source.
func (r UpdateReport) HasUpdates() bool {
	return len(r.NewSets) > 0 || len(r.Updated) > 0
}

// CompareCounts matches remote sets to bundled ones by remote code, then by
// set code, and reports the card count differences.
func (s *Store) CompareCounts(remote []RemoteSetCount) UpdateReport {
	var report UpdateReport
	for _, rs := range remote {
		report.RemoteTotal += rs.Cards

		set, ok := s.SetByCode(rs.Code)
		if !ok {
			d := SetCountDiff{Name: rs.Name, Code: rs.Code, Remote: rs.Cards, Difference: rs.Cards, New: true}
			report.Sets = append(report.Sets, d)
			report.NewSets = append(report.NewSets, d)
			continue
		}

		local := s.LocalCardCount(set.Name)
		report.LocalTotal += local
		d := SetCountDiff{
			Name:       set.Name,
			Code:       set.Code,
			Remote:     rs.Cards,
			Local:      local,
			Difference: rs.Cards - local,
		}
		report.Sets = append(report.Sets, d)
		if d.Difference > 0 {
			report.Updated = append(report.Updated, d)
		}
	}
	return report
}
