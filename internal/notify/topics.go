package notify

const (
	TopicJobs = "notify.jobs"
)

// Partition key = target (nomor WA / alamat email), supaya pesan ke penerima
// yang sama terjaga urutannya.
func PartitionKey(target string) []byte { return []byte(target) }
