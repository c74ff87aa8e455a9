package layout

// UpdateBadge sets the unread count of every app of bundle, on the grid and
// inside folders, and refreshes the totals shown on affected folders. It
// returns the number of items updated.
func UpdateBadge(s *Snapshot, bundle string, count int) int {
	if count < 0 {
		count = 0
	}
	n := 0
	for i := range s.Items {
		if s.Items[i].Kind() == KindApp && s.Items[i].Bundle() == bundle {
			s.Items[i].Badge = count
			n++
		}
	}
	for id, members := range s.Folders {
		touched := false
		for i := range members {
			if members[i].Bundle() == bundle {
				members[i].Badge = count
				touched = true
				n++
			}
		}
		if touched {
			refreshFolderBadge(s, id)
		}
	}
	return n
}

// FolderBadge returns the sum of the positive badges of a folder's members.
func FolderBadge(s *Snapshot, folderID string) int {
	return badgeSum(s.Folders[folderID])
}

func refreshFolderBadge(s *Snapshot, folderID string) {
	if i := s.Index(folderID); i >= 0 {
		s.Items[i].Badge = badgeSum(s.Folders[folderID])
	}
}

func badgeSum(members []Item) int {
	total := 0
	for _, m := range members {
		if m.Badge > 0 {
			total += m.Badge
		}
	}
	return total
}
