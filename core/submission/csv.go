package submission

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// csvTimeLayout renders timestamps the way the teacher dashboard shows them
// (id-ID style, day first).
const csvTimeLayout = "02/01/2006 15.04.05"

var csvHeaders = []string{
	"Nama Siswa", "Kelas", "No Absen", "Judul Video", "Link YouTube",
	"Waktu Pengumpulan", "Feedback AI", "Nilai", "Catatan Guru",
}

// WriteCSV writes the full submission set to w as a comma-separated file.
// Embedded quotes in free-text fields are escaped per RFC 4180.
func WriteCSV(w io.Writer, subs []Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, sub := range subs {
		score := ""
		if sub.Graded() {
			score = strconv.Itoa(*sub.Score)
		}
		row := []string{
			sub.StudentName,
			sub.Class,
			sub.RollNumber,
			sub.VideoTitle,
			sub.VideoURL,
			sub.SubmittedAt.Format(csvTimeLayout),
			sub.AIFeedback,
			score,
			sub.TeacherNote,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename returns the download name for an export made at t.
func ExportFilename(t time.Time) string {
	return "rekap_tugas_vlog_" + t.Format("2006-01-02") + ".csv"
}
