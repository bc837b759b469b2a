//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/histfeed/histfeed --repository.default-branch main --repository.path /

package histfeed
